// Package target holds the observing target record and its editing rules.
package target

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/KeckObservatory/planning-tool/internal/astro"
)

// Status tracks whether a record was edited or created locally.
type Status string

const (
	StatusEdited  Status = "EDITED"
	StatusCreated Status = "CREATED"
)

// Errors for target editing and resolution.
var (
	ErrUnknownField = errors.New("unknown target field")
	ErrNoCoordinate = errors.New("target has no coordinates")
)

// Target is one entry of an observer's target list.
type Target struct {
	ID      string   `json:"_id"`
	ObsID   int      `json:"obsid,omitempty"`
	Name    string   `json:"target_name,omitempty"`
	RA      string   `json:"ra,omitempty"`
	Dec     string   `json:"dec,omitempty"`
	RADeg   *float64 `json:"ra_deg,omitempty"`
	DecDeg  *float64 `json:"dec_deg,omitempty"`
	Epoch   string   `json:"epoch,omitempty"`
	PMRA    *float64 `json:"pm_ra,omitempty"`
	PMDec   *float64 `json:"pm_dec,omitempty"`
	GMag    *float64 `json:"g_mag,omitempty"`
	JMag    *float64 `json:"j_mag,omitempty"`
	TEff    *float64 `json:"t_eff,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	Comment string   `json:"comment,omitempty"`
	Status  Status   `json:"status,omitempty"`
}

// New creates a target with a fresh ID.
func New(name string) Target {
	return Target{ID: uuid.NewString(), Name: name, Status: StatusCreated}
}

// Label returns the name, or the ID for unnamed targets.
func (t Target) Label() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

var numberChars = regexp.MustCompile(`[^\d.-]`)

// Set assigns a field from edit text and marks the target edited. Text and
// decimal coordinates are kept in sync: setting ra updates ra_deg and the
// reverse, likewise for dec. An empty value clears the field and its pair.
func (t *Target) Set(key, value string) error {
	switch key {
	case "target_name":
		t.Name = value
	case "comment":
		t.Comment = value
	case "epoch":
		t.Epoch = value
	case "tags":
		t.Tags = FormatTags(strings.Split(value, ","))
	case "ra", "dec":
		isDec := key == "dec"
		text := strings.TrimRight(astro.FormatSexagesimalInput(value), ":.")
		var deg *float64
		if text != "" {
			d, err := astro.ParseSexagesimal(text, isDec)
			if err != nil {
				return fmt.Errorf("set %s: %w", key, err)
			}
			deg = &d
		}
		if isDec {
			t.Dec, t.DecDeg = text, deg
		} else {
			t.RA, t.RADeg = text, deg
		}
	case "ra_deg", "dec_deg":
		isDec := key == "dec_deg"
		deg, err := parseNumber(value)
		if err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		text := ""
		if deg != nil {
			text = astro.FormatSexagesimal(*deg, isDec)
		}
		if isDec {
			t.Dec, t.DecDeg = text, deg
		} else {
			t.RA, t.RADeg = text, deg
		}
	case "pm_ra", "pm_dec", "g_mag", "j_mag", "t_eff":
		n, err := parseNumber(value)
		if err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		*t.numberField(key) = n
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}

	t.Status = StatusEdited
	return nil
}

func (t *Target) numberField(key string) **float64 {
	switch key {
	case "pm_ra":
		return &t.PMRA
	case "pm_dec":
		return &t.PMDec
	case "g_mag":
		return &t.GMag
	case "j_mag":
		return &t.JMag
	default:
		return &t.TEff
	}
}

// parseNumber strips everything but digits, '.' and '-' and parses the
// rest. Empty input is nil.
func parseNumber(value string) (*float64, error) {
	cleaned := numberChars.ReplaceAllString(value, "")
	if cleaned == "" {
		return nil, nil
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Coordinate resolves the target's position, preferring the decimal values
// and falling back to the sexagesimal text.
func (t Target) Coordinate() (astro.Coordinate, error) {
	ra, err := resolve(t.RADeg, t.RA, false)
	if err != nil {
		return astro.Coordinate{}, fmt.Errorf("%s ra: %w", t.Label(), err)
	}
	dec, err := resolve(t.DecDeg, t.Dec, true)
	if err != nil {
		return astro.Coordinate{}, fmt.Errorf("%s dec: %w", t.Label(), err)
	}
	return astro.NewCoordinate(ra, dec)
}

func resolve(deg *float64, text string, isDec bool) (float64, error) {
	if deg != nil {
		return *deg, nil
	}
	v, err := astro.ParseSexagesimal(text, isDec)
	if errors.Is(err, astro.ErrEmptySexagesimal) {
		return 0, ErrNoCoordinate
	}
	return v, err
}

// FormatTags trims each tag, strips commas, and drops empty and repeated
// tags. Order of first appearance is kept.
func FormatTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.ReplaceAll(strings.TrimSpace(tag), ",", "")
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// Decode reads a JSON array of targets. Targets without an ID get one.
func Decode(r io.Reader) ([]Target, error) {
	var targets []Target
	if err := json.NewDecoder(r).Decode(&targets); err != nil {
		return nil, fmt.Errorf("decode targets: %w", err)
	}
	for i := range targets {
		if targets[i].ID == "" {
			targets[i].ID = uuid.NewString()
		}
		targets[i].Tags = FormatTags(targets[i].Tags)
	}
	return targets, nil
}

// LoadFile reads a JSON target list from path.
func LoadFile(path string) ([]Target, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open targets: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
