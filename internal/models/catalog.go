package models

// PlaceholderRoom marks a session whose room or building is not published.
const PlaceholderRoom = "--"

// Department identifies one catalog subdivision of the OBS source.
type Department struct {
	Code string `json:"code"`
	ID   int    `json:"id"`
}

// CourseSession is a single weekly meeting of a course section.
// Day is 0 for Monday through 4 for Friday.
type CourseSession struct {
	Day       int    `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Room      string `json:"room"`
	Building  string `json:"building"`
}

// CourseOffering is one schedulable section as reported by OBS.
// CRN is the natural key across the whole catalog.
type CourseOffering struct {
	CRN            string          `json:"crn"`
	CourseCode     string          `json:"courseCode"`
	CourseName     string          `json:"courseName"`
	Instructor     string          `json:"instructor"`
	TeachingMethod string          `json:"teachingMethod"`
	Capacity       int             `json:"capacity"`
	Enrolled       int             `json:"enrolled"`
	Sessions       []CourseSession `json:"sessions"`
	Programmes     string          `json:"programmes"`
}
