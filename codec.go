package tilemap

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Delimiters of the save format. They may not appear inside any field.
const (
	TokenInfo    = "&slinfos&"
	TokenSection = "&sltype&"
	TokenRecord  = "&slnewtile&"
	TokenField   = "&sltile&"
	TokenFrame   = "&slanimation&"
)

var tokens = []string{TokenInfo, TokenSection, TokenRecord, TokenField, TokenFrame}

const (
	sectionCount     = 4
	tileFieldCount   = 6
	markerFieldCount = 5
)

// TileRecord is the saved form of a basic tile.
type TileRecord struct {
	ID       string
	X, Y     int
	Animated bool
	Scale    int
	Paths    []string
}

// MarkerRecord is the saved form of a spawn or event point. Width and
// Height pin the marker size directly.
type MarkerRecord struct {
	ID            string
	X, Y          int
	Width, Height int
}

// Document is the content of a save file.
//
// The text form is
//
//	folder &slinfos& background &sltype&
//	tile &slnewtile& tile ... &sltype&
//	spawn &slnewtile& ... &sltype&
//	event &slnewtile& ...
//
// with record fields joined by &sltile& and animation frames joined by
// &slanimation&.
type Document struct {
	Folder     string
	Background string
	Tiles      []TileRecord
	Spawns     []MarkerRecord
	Events     []MarkerRecord
}

// checkField rejects values that would be read back differently: values
// holding a delimiter, values ending in the start of one, and values that
// complete one with the "&" that ends the delimiter written before them.
func checkField(where, value string) error {
	for _, tok := range tokens {
		if strings.Contains(value, tok) {
			return fmt.Errorf("%w: %s contains %q", ErrReservedToken, where, tok)
		}
		for i := 1; i < len(tok); i++ {
			if strings.HasSuffix(value, tok[:i]) {
				return fmt.Errorf("%w: %s ends with %q", ErrReservedToken, where, tok[:i])
			}
		}
		if tail := tok[1:]; strings.HasPrefix(value, tail) || value == tail[:len(tail)-1] {
			return fmt.Errorf("%w: %s starts like %q", ErrReservedToken, where, tok)
		}
	}
	return nil
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// MarshalText encodes the document. It fails with ErrReservedToken instead
// of writing a file that would not load back.
func (d *Document) MarshalText() ([]byte, error) {
	if err := checkField("folder", d.Folder); err != nil {
		return nil, err
	}
	if err := checkField("background", d.Background); err != nil {
		return nil, err
	}

	tiles := make([]string, 0, len(d.Tiles))
	for i, r := range d.Tiles {
		where := fmt.Sprintf("tile %d", i)
		if err := checkField(where+" id", r.ID); err != nil {
			return nil, err
		}
		if len(r.Paths) == 0 {
			return nil, fmt.Errorf("tilemap: %s has no image path", where)
		}
		if slices.Contains(r.Paths, "") {
			return nil, fmt.Errorf("tilemap: %s has an empty image path", where)
		}
		for _, p := range r.Paths {
			if err := checkField(where+" path", p); err != nil {
				return nil, err
			}
		}
		tiles = append(tiles, strings.Join([]string{
			r.ID,
			strconv.Itoa(r.X),
			strconv.Itoa(r.Y),
			formatBool(r.Animated),
			strconv.Itoa(r.Scale),
			strings.Join(r.Paths, TokenFrame),
		}, TokenField))
	}

	spawns, err := marshalMarkers("spawn", d.Spawns)
	if err != nil {
		return nil, err
	}
	events, err := marshalMarkers("event", d.Events)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(d.Folder)
	b.WriteString(TokenInfo)
	b.WriteString(d.Background)
	b.WriteString(TokenSection)
	b.WriteString(strings.Join(tiles, TokenRecord))
	b.WriteString(TokenSection)
	b.WriteString(spawns)
	b.WriteString(TokenSection)
	b.WriteString(events)
	return []byte(b.String()), nil
}

func marshalMarkers(kind string, records []MarkerRecord) (string, error) {
	out := make([]string, 0, len(records))
	for i, r := range records {
		if err := checkField(fmt.Sprintf("%s %d id", kind, i), r.ID); err != nil {
			return "", err
		}
		out = append(out, strings.Join([]string{
			r.ID,
			strconv.Itoa(r.X),
			strconv.Itoa(r.Y),
			strconv.Itoa(r.Width),
			strconv.Itoa(r.Height),
		}, TokenField))
	}
	return strings.Join(out, TokenRecord), nil
}

// UnmarshalText decodes a save file. On error d is left unchanged.
func (d *Document) UnmarshalText(data []byte) error {
	text := strings.TrimRight(string(data), "\r\n")
	sections := strings.Split(text, TokenSection)
	if len(sections) != sectionCount {
		return &FormatError{Section: "file", Record: -1, Field: -1,
			Msg: fmt.Sprintf("want %d sections, got %d", sectionCount, len(sections))}
	}

	infos := strings.Split(sections[0], TokenInfo)
	if len(infos) != 2 {
		return &FormatError{Section: "infos", Record: -1, Field: -1,
			Msg: fmt.Sprintf("want 2 fields, got %d", len(infos))}
	}

	var doc Document
	doc.Folder = infos[0]
	doc.Background = infos[1]

	for i, fields := range splitRecords(sections[1]) {
		if len(fields) != tileFieldCount {
			return &FormatError{Section: "tiles", Record: i, Field: -1,
				Msg: fmt.Sprintf("want %d fields, got %d", tileFieldCount, len(fields))}
		}
		r := TileRecord{ID: fields[0]}
		ints := []*int{nil, &r.X, &r.Y, nil, &r.Scale}
		for f, dst := range ints {
			if dst == nil {
				continue
			}
			v, err := strconv.Atoi(fields[f])
			if err != nil {
				return &FormatError{Section: "tiles", Record: i, Field: f, Msg: "not an integer", Err: err}
			}
			*dst = v
		}
		switch fields[3] {
		case "True":
			r.Animated = true
		case "False":
		default:
			return &FormatError{Section: "tiles", Record: i, Field: 3,
				Msg: fmt.Sprintf("animated flag %q is neither True nor False", fields[3])}
		}
		if fields[5] == "" {
			return &FormatError{Section: "tiles", Record: i, Field: 5, Msg: "empty image source"}
		}
		r.Paths = strings.Split(fields[5], TokenFrame)
		if slices.Contains(r.Paths, "") {
			return &FormatError{Section: "tiles", Record: i, Field: 5, Msg: "empty frame path"}
		}
		// Several frames always mean animation; a one-frame animation keeps
		// its flag.
		r.Animated = r.Animated || len(r.Paths) > 1
		doc.Tiles = append(doc.Tiles, r)
	}

	var err error
	if doc.Spawns, err = unmarshalMarkers("spawn points", sections[2]); err != nil {
		return err
	}
	if doc.Events, err = unmarshalMarkers("event points", sections[3]); err != nil {
		return err
	}

	*d = doc
	return nil
}

func unmarshalMarkers(section, text string) ([]MarkerRecord, error) {
	var out []MarkerRecord
	for i, fields := range splitRecords(text) {
		if len(fields) != markerFieldCount {
			return nil, &FormatError{Section: section, Record: i, Field: -1,
				Msg: fmt.Sprintf("want %d fields, got %d", markerFieldCount, len(fields))}
		}
		r := MarkerRecord{ID: fields[0]}
		for f, dst := range []*int{&r.X, &r.Y, &r.Width, &r.Height} {
			v, err := strconv.Atoi(fields[f+1])
			if err != nil {
				return nil, &FormatError{Section: section, Record: i, Field: f + 1, Msg: "not an integer", Err: err}
			}
			*dst = v
		}
		out = append(out, r)
	}
	return out, nil
}

// splitRecords splits a section into records and fields. An empty section
// holds no records.
func splitRecords(section string) [][]string {
	if section == "" {
		return nil
	}
	records := strings.Split(section, TokenRecord)
	out := make([][]string, len(records))
	for i, r := range records {
		out[i] = strings.Split(r, TokenField)
	}
	return out
}
