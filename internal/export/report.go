package export

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/joseph-ayodele/amenity-parser/internal/entity"
)

// Count is one line of a breakdown.
type Count struct {
	Key   string
	Count int
}

// CountBy groups records by key, largest group first, ties by key.
func CountBy(records []entity.AmenityRecord, key func(entity.AmenityRecord) string) []Count {
	m := map[string]int{}
	for _, r := range records {
		m[key(r)]++
	}
	out := make([]Count, 0, len(m))
	for k, n := range m {
		out = append(out, Count{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// WriteReport writes the operator summary of a run.
func WriteReport(w io.Writer, records []entity.AmenityRecord, report entity.RunReport, at time.Time) error {
	bw := bufio.NewWriter(w)
	p := func(format string, args ...any) { _, _ = fmt.Fprintf(bw, format+"\n", args...) }

	p("=== ОТЧЕТ О ПАРСИНГЕ ОБЪЕКТОВ БЛАГОУСТРОЙСТВА ВОЛГОГРАДА ===")
	p("Дата: %s", at.Format("02.01.2006 15:04:05"))
	if report.RunID != "" {
		p("Запуск: %s", report.RunID)
	}
	p("Документов: %d (ошибок: %d, без таблицы: %d)", report.Documents, report.DocumentsFailed, report.NoBoundary)
	p("Всего объектов: %d", len(records))
	p("Отклонено блоков: %d", report.Rejected)

	section := func(title string, counts []Count) {
		p("")
		p("=== %s ===", title)
		for _, c := range counts {
			p("%s: %d объектов", c.Key, c.Count)
		}
	}
	section("СТАТИСТИКА ПО РАЙОНАМ", CountBy(records, func(r entity.AmenityRecord) string { return r.District }))
	section("СТАТИСТИКА ПО ТИПАМ", CountBy(records, func(r entity.AmenityRecord) string { return r.Category }))
	section("СТАТИСТИКА ПО СТАТУСАМ", CountBy(records, func(r entity.AmenityRecord) string { return r.Status }))

	return bw.Flush()
}
