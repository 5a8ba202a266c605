package gtfs

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Load reads a GTFS zip from a local path or an http(s) URL and builds the
// schedule index.
func Load(source string) (*ScheduleIndex, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return loadFromURL(source)
	}
	return loadFromLocalZip(source)
}

func loadFromURL(url string) (*ScheduleIndex, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch schedule %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch schedule %s: HTTP %d", url, resp.StatusCode)
	}
	tmp, err := os.CreateTemp("", "gtfs-*.zip")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	return loadFromLocalZip(tmp.Name())
}

func loadFromLocalZip(path string) (*ScheduleIndex, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open schedule %s: %w", path, err)
	}
	defer zr.Close()

	g := newScheduleIndex()
	for _, f := range zr.File {
		name := strings.ToLower(f.Name)
		switch name {
		case "agency.txt", "routes.txt", "trips.txt", "stop_times.txt", "calendar.txt", "calendar_dates.txt":
			if err := g.consumeCSV(f); err != nil {
				return nil, fmt.Errorf("read %s: %w", f.Name, err)
			}
		}
	}
	if g.agencyTZ != "" {
		loc, err := time.LoadLocation(g.agencyTZ)
		if err != nil {
			return nil, fmt.Errorf("agency timezone %q: %w", g.agencyTZ, err)
		}
		g.timezone = loc
	}
	return g, nil
}

func (g *ScheduleIndex) consumeCSV(f *zip.File) error {
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer r.Close()
	rec, err := readCSV(r)
	if err != nil {
		return err
	}
	if len(rec) == 0 {
		return nil
	}
	head := rec[0]
	idx := func(col string) int {
		for i, h := range head {
			if strings.EqualFold(strings.TrimSpace(h), col) {
				return i
			}
		}
		return -1
	}
	get := func(row []string, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}

	switch strings.ToLower(f.Name) {
	case "agency.txt":
		agID := idx("agency_id")
		agTZ := idx("agency_timezone")
		if len(rec) > 1 {
			if g.agencyID == "" {
				g.agencyID = get(rec[1], agID)
			}
			g.agencyTZ = get(rec[1], agTZ)
		}
	case "routes.txt":
		rID := idx("route_id")
		rSN := idx("route_short_name")
		rType := idx("route_type")
		for _, row := range rec[1:] {
			id := get(row, rID)
			if id == "" {
				continue
			}
			rt, _ := strconv.Atoi(get(row, rType))
			g.routes[id] = &Route{ID: id, ShortName: get(row, rSN), Type: rt}
		}
	case "trips.txt":
		rID := idx("route_id")
		tID := idx("trip_id")
		sID := idx("service_id")
		for _, row := range rec[1:] {
			id := get(row, tID)
			if id == "" {
				continue
			}
			t := &Trip{ID: id, RouteID: get(row, rID), ServiceID: get(row, sID)}
			g.trips[id] = t
			g.tripsByRoute[t.RouteID] = append(g.tripsByRoute[t.RouteID], t)
		}
	case "stop_times.txt":
		tID := idx("trip_id")
		sID := idx("stop_id")
		sq := idx("stop_sequence")
		arr := idx("arrival_time")
		dep := idx("departure_time")
		if tID < 0 || sID < 0 || sq < 0 {
			return nil
		}
		type row struct {
			st  StopTime
			seq int
		}
		tmp := map[string][]row{}
		for _, rw := range rec[1:] {
			trip := get(rw, tID)
			seq, _ := strconv.Atoi(get(rw, sq))
			st := StopTime{StopID: get(rw, sID)}
			if v, ok := parseGTFSTime(get(rw, arr)); ok {
				st.Arrival, st.HasArrival = v, true
				if v > g.maxStopTimeSec {
					g.maxStopTimeSec = v
				}
			}
			if v, ok := parseGTFSTime(get(rw, dep)); ok {
				st.Departure, st.HasDeparture = v, true
				if v > g.maxStopTimeSec {
					g.maxStopTimeSec = v
				}
			}
			tmp[trip] = append(tmp[trip], row{st: st, seq: seq})
		}
		for trip, rows := range tmp {
			sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
			sts := make([]StopTime, len(rows))
			for i, r := range rows {
				sts[i] = r.st
			}
			g.stopTimes[trip] = sts
		}
	case "calendar.txt":
		sID := idx("service_id")
		start := idx("start_date")
		end := idx("end_date")
		dayCols := [7]int{
			idx("sunday"), idx("monday"), idx("tuesday"), idx("wednesday"),
			idx("thursday"), idx("friday"), idx("saturday"),
		}
		for _, row := range rec[1:] {
			id := get(row, sID)
			if id == "" {
				continue
			}
			var cal calendar
			for wd, col := range dayCols {
				cal.days[wd] = get(row, col) == "1"
			}
			var err error
			if cal.start, err = ParseServiceDate(get(row, start)); err != nil {
				return err
			}
			if cal.end, err = ParseServiceDate(get(row, end)); err != nil {
				return err
			}
			g.calendars[id] = cal
		}
	case "calendar_dates.txt":
		sID := idx("service_id")
		date := idx("date")
		exc := idx("exception_type")
		for _, row := range rec[1:] {
			id := get(row, sID)
			d := get(row, date)
			if id == "" || d == "" {
				continue
			}
			ex, _ := strconv.Atoi(get(row, exc))
			if g.exceptions[d] == nil {
				g.exceptions[d] = map[string]int{}
			}
			g.exceptions[d][id] = ex
		}
	}
	return nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return cr.ReadAll()
}

// parseGTFSTime parses HH:MM:SS into seconds past service-day midnight.
// Hours may exceed 24 for trips running past midnight.
func parseGTFSTime(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	sec, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || h < 0 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, false
	}
	return h*3600 + m*60 + sec, true
}
