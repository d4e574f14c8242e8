// Package schedule reconstructs course offerings from the ragged tabular
// rows of an OBS course listing. Row layouts differ between department
// variants, so every field is located relative to the CRN cell rather
// than by absolute column position.
package schedule

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/selimk/obs-catalog-api/internal/models"
)

// minRowCells is the shortest row that can hold a complete course entry.
// Header, footer and decorative rows all fall under this threshold.
const minRowCells = 10

var (
	crnPattern       = regexp.MustCompile(`^\d{5}$`)
	timeRangePattern = regexp.MustCompile(`(\d{2}:\d{2})/(\d{2}:\d{2})`)
)

// dayIndex maps day names to 0 (Monday) .. 4 (Friday). OBS mixes Turkish
// and English, full names and abbreviations, sometimes within one table.
var dayIndex = map[string]int{
	"Monday": 0, "Tuesday": 1, "Wednesday": 2, "Thursday": 3, "Friday": 4,
	"Pazartesi": 0, "Salı": 1, "Çarşamba": 2, "Perşembe": 3, "Cuma": 4,
	"Mon": 0, "Tue": 1, "Wed": 2, "Thu": 3, "Fri": 4,
	"Pzt": 0, "Sal": 1, "Çar": 2, "Per": 3, "Cum": 4,
}

// TimeRange is one start/end pair extracted from a times cell.
type TimeRange struct {
	Start string
	End   string
}

// Parse converts raw table rows into offerings. Malformed rows are skipped,
// never fatal; the output is at most as long as the input.
func Parse(rows [][]string) []models.CourseOffering {
	offerings := make([]models.CourseOffering, 0, len(rows))
	for _, row := range rows {
		if offering, ok := parseRow(row); ok {
			offerings = append(offerings, offering)
		}
	}
	return offerings
}

func parseRow(cells []string) (models.CourseOffering, bool) {
	if len(cells) < minRowCells {
		return models.CourseOffering{}, false
	}

	anchor, ok := LocateAnchor(cells)
	if !ok {
		return models.CourseOffering{}, false
	}

	fields := ExtractFixedFields(cells, anchor)

	offering := models.CourseOffering{
		CRN:            cells[anchor],
		CourseCode:     fields.CourseCode,
		CourseName:     fields.CourseName,
		TeachingMethod: fields.TeachingMethod,
		Instructor:     fields.Instructor,
		Capacity:       parseCount(fields.Capacity),
		Enrolled:       parseCount(fields.Enrolled),
		Programmes:     ExtractProgrammeTag(cells, anchor),
		Sessions:       ZipSessions(fields.Days, fields.Times, fields.Rooms, fields.Buildings),
	}
	return offering, true
}

// LocateAnchor finds the first cell holding exactly five digits, which is
// the CRN column regardless of how many leading columns the variant has.
func LocateAnchor(cells []string) (int, bool) {
	for i, cell := range cells {
		if crnPattern.MatchString(cell) {
			return i, true
		}
	}
	return 0, false
}

// FixedFields are the ten cells that follow the CRN anchor.
type FixedFields struct {
	CourseCode     string
	CourseName     string
	TeachingMethod string
	Instructor     string
	Buildings      string
	Days           string
	Times          string
	Rooms          string
	Capacity       string
	Enrolled       string
}

// ExtractFixedFields reads the fixed block after the anchor. Cells past the
// end of the row default to the empty string.
func ExtractFixedFields(cells []string, anchor int) FixedFields {
	at := func(offset int) string {
		idx := anchor + offset
		if idx < len(cells) {
			return cells[idx]
		}
		return ""
	}
	return FixedFields{
		CourseCode:     at(1),
		CourseName:     at(2),
		TeachingMethod: at(3),
		Instructor:     at(4),
		Buildings:      at(5),
		Days:           at(6),
		Times:          at(7),
		Rooms:          at(8),
		Capacity:       at(9),
		Enrolled:       at(10),
	}
}

// ExtractProgrammeTag scans up to four cells past the fixed block for the
// first cell carrying a programme marker and returns it verbatim.
func ExtractProgrammeTag(cells []string, anchor int) string {
	for i := anchor + 11; i < anchor+15 && i < len(cells); i++ {
		if strings.Contains(cells[i], "_LS") || strings.Contains(cells[i], "_YD") {
			return cells[i]
		}
	}
	return ""
}

// ParseTimeRanges extracts HH:MM/HH:MM pairs in left-to-right order.
func ParseTimeRanges(raw string) []TimeRange {
	matches := timeRangePattern.FindAllStringSubmatch(raw, -1)
	ranges := make([]TimeRange, 0, len(matches))
	for _, m := range matches {
		ranges = append(ranges, TimeRange{Start: m[1], End: m[2]})
	}
	return ranges
}

// ZipSessions aligns day tokens with time ranges, rooms and buildings by
// position. An unrecognized day token or a missing time range drops that
// session without shifting the alignment of later tokens; a missing
// room or building only degrades to the placeholder.
func ZipSessions(daysRaw, timesRaw, roomsRaw, buildingsRaw string) []models.CourseSession {
	days := strings.Fields(daysRaw)
	times := ParseTimeRanges(timesRaw)
	rooms := strings.Fields(roomsRaw)
	buildings := strings.Fields(buildingsRaw)

	sessions := make([]models.CourseSession, 0, len(days))
	for i, name := range days {
		day, ok := dayIndex[name]
		if !ok {
			continue
		}
		if i >= len(times) {
			continue
		}

		room := models.PlaceholderRoom
		if i < len(rooms) {
			room = rooms[i]
		}
		building := models.PlaceholderRoom
		if i < len(buildings) {
			building = buildings[i]
		}

		sessions = append(sessions, models.CourseSession{
			Day:       day,
			StartTime: times[i].Start,
			EndTime:   times[i].End,
			Room:      room,
			Building:  building,
		})
	}
	return sessions
}

func parseCount(raw string) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0
	}
	return value
}
