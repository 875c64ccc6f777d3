package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/arnavshah/rota-api-go/pkg/models"
)

// WriteTable renders one row per day and one column per shift
func WriteTable(w io.Writer, schedule models.Schedule, days, shifts []string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := append([]string{"DAY"}, upper(shifts)...)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, day := range days {
		row := []string{day}
		for _, shift := range shifts {
			row = append(row, strings.Join(schedule[day][shift], ", "))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// WriteWorkloads renders days worked per employee, ordered by ID
func WriteWorkloads(w io.Writer, workloads map[string]models.Workload) error {
	ids := make([]string, 0, len(workloads))
	for id := range workloads {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EMPLOYEE\tDAYS\tSLOTS")
	for _, id := range ids {
		wl := workloads[id]
		slots := make([]string, 0, len(wl.Assignments))
		for _, a := range wl.Assignments {
			slots = append(slots, a.Day+"/"+a.Shift)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", id, wl.DaysWorked, strings.Join(slots, " "))
	}
	return tw.Flush()
}

// WriteCSV writes one row per seat: day, shift, employee_id, employee_name
func WriteCSV(w io.Writer, schedule models.Schedule, days, shifts []string, names map[string]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"day", "shift", "employee_id", "employee_name"}); err != nil {
		return err
	}
	for _, day := range days {
		for _, shift := range shifts {
			for _, id := range schedule[day][shift] {
				if err := writer.Write([]string{day, shift, id, names[id]}); err != nil {
					return err
				}
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadRosterCSV parses "id,name,first_pref,second_pref" rows; the header is required
// and columns may appear in any order. name is optional.
func ReadRosterCSV(r io.Reader) ([]models.Employee, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading roster header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"id", "first_pref", "second_pref"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("roster CSV is missing column %q", required)
		}
	}

	var employees []models.Employee
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("roster CSV line %d: %w", line, err)
		}
		e := models.Employee{
			ID: strings.TrimSpace(record[cols["id"]]),
			Prefs: models.Preferences{
				First:  strings.TrimSpace(record[cols["first_pref"]]),
				Second: strings.TrimSpace(record[cols["second_pref"]]),
			},
		}
		if i, ok := cols["name"]; ok {
			e.Name = strings.TrimSpace(record[i])
		}
		employees = append(employees, e)
	}
	return employees, nil
}

func upper(labels []string) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = strings.ToUpper(l)
	}
	return out
}
