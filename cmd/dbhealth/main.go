package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/joseph-ayodele/amenity-parser/internal/app"
	"github.com/joseph-ayodele/amenity-parser/internal/catalog"
	"github.com/joseph-ayodele/amenity-parser/internal/common"
	"github.com/joseph-ayodele/amenity-parser/internal/entity"
	repo "github.com/joseph-ayodele/amenity-parser/internal/repository"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := common.LoadConfig()
	a, err := app.Build(ctx, cfg, nil, nil)
	if err != nil {
		log.Fatalf("opening stores: %v", err)
	}
	defer a.Close()

	jobs, err := a.Jobs.List(ctx, 5)
	if err != nil {
		log.Fatalf("ledger: FAIL (%v)", err)
	}
	log.Printf("ledger %s: OK, recent jobs: %d", cfg.State.SQLitePath, len(jobs))
	for _, j := range jobs {
		log.Printf("- [%s] %s records=%d", j.Status, j.LocalPath, j.Records)
	}

	if a.Catalog == nil {
		log.Println("catalog: disabled (CATALOG_KIND=none)")
		return
	}
	if err := repo.HealthCheck(ctx, a.Catalog, cfg.Catalog.PingTimeout, nil); err != nil {
		log.Fatalf("catalog %s: FAIL (%v)", cfg.Catalog.Kind, err)
	}
	log.Printf("catalog %s: OK", cfg.Catalog.Kind)

	if c, ok := a.Catalog.(*catalog.Client); ok {
		st, err := c.Stats(ctx)
		if err != nil {
			log.Printf("catalog stats: unavailable (%v)", err)
		} else {
			log.Printf("catalog stats: total=%d districts=%d types=%d", st.Total, len(st.ByDistrict), len(st.ByType))
		}
	}

	objs, err := a.Catalog.List(ctx, entity.CatalogFilter{Limit: 10})
	if err != nil {
		log.Fatalf("listing objects: %v", err)
	}
	log.Printf("objects (first page): %d", len(objs))
	for _, o := range objs {
		log.Printf("- [%s] %s", o.ID, o.Name)
	}
}
