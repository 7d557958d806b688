package holidays

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/meenmo/moschedule/calendar"
	"github.com/meenmo/moschedule/dates"
)

// fileSpec is the YAML layout of a holiday file:
//
//	name: KRX
//	weekend: [sat, sun]
//	holidays:
//	  - "2024-01-01"
//	  - "2024-02-09"
type fileSpec struct {
	Name     string   `yaml:"name"`
	Weekend  []string `yaml:"weekend"`
	Holidays []string `yaml:"holidays"`
}

// FileSource serves holidays read from a YAML file.
type FileSource struct {
	name  string
	mask  calendar.WeekendMask
	dates []dates.Date
}

// LoadFile reads a holiday file from disk.
func LoadFile(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open holiday file: %w", err)
	}
	defer f.Close()
	src, err := ParseFile(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

// ParseFile decodes a holiday file. An omitted weekend means Saturday and
// Sunday; an explicit empty list means no weekend.
func ParseFile(r io.Reader) (*FileSource, error) {
	var spec fileSpec
	if err := yaml.NewDecoder(r).Decode(&spec); err != nil {
		return nil, fmt.Errorf("failed to decode holiday file: %w", err)
	}
	if spec.Name == "" {
		return nil, fmt.Errorf("holiday file has no name")
	}

	mask := calendar.WeekendSaturdaySunday
	if spec.Weekend != nil {
		m, err := calendar.ParseWeekendMask(spec.Weekend)
		if err != nil {
			return nil, fmt.Errorf("weekend: %w", err)
		}
		mask = m
	}

	src := &FileSource{name: normalizeID(spec.Name), mask: mask, dates: make([]dates.Date, 0, len(spec.Holidays))}
	for i, s := range spec.Holidays {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return nil, fmt.Errorf("holidays[%d]: %w", i, err)
		}
		y, m, d := t.Date()
		date, err := dates.FromYMD(y, int(m), d)
		if err != nil {
			return nil, fmt.Errorf("holidays[%d]: %w", i, err)
		}
		src.dates = append(src.dates, date)
	}
	return src, nil
}

func (s *FileSource) Name() string                  { return s.name }
func (s *FileSource) Weekend() calendar.WeekendMask { return s.mask }

func (s *FileSource) Holidays(startYear, endYear int) ([]dates.Date, error) {
	return inYears(s.dates, startYear, endYear), nil
}
