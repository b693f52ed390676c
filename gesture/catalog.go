package gesture

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

const (
	// DriverVersion is reported on the configuration surface.
	DriverVersion = "1.1.0"

	DefaultButtonLimit     = 1900
	DefaultStatusBarYMin   = 0
	DefaultStatusBarYMax   = 80
	DefaultDoubleTapWindow = 800 * time.Millisecond

	// DefaultImplemented enables the launcher dock swipes, the diagonal
	// gesture and the status bar double tap.
	DefaultImplemented = BitDynamic1 | BitStatic3 | BitStatic4 | BitStatusBarDoubleTap
)

// Catalog is the immutable set of gesture definitions plus the fixed
// panel bands the lifecycle and the double tap detector use.
type Catalog struct {
	Banks []Definition

	// ButtonLimit is the top of the soft key band. Lifts at or below it
	// (y >= ButtonLimit) do not end a session.
	ButtonLimit int

	StatusBar       Band
	DoubleTapWindow time.Duration
	Implemented     Mask
}

// DefaultCatalog returns the geometry tuned for a 1080x1920 panel with
// soft keys below the display area.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Banks: []Definition{
			// right to left on soft keys
			Static("static.1", BitStatic1,
				Rect{XMin: 700, XMax: 1280, YMin: 1900, YMax: 2400},
				Rect{XMin: 350, XMax: 650, YMin: 1900, YMax: 2400},
				Rect{XMin: 0, XMax: 300, YMin: 1900, YMax: 2400}),
			// left to right on soft keys
			Static("static.2", BitStatic2,
				Rect{XMin: 0, XMax: 300, YMin: 1900, YMax: 2400},
				Rect{XMin: 350, XMax: 650, YMin: 1900, YMax: 2400},
				Rect{XMin: 700, XMax: 1280, YMin: 1900, YMax: 2400}),
			// right to left on launcher dock
			Static("static.3", BitStatic3,
				Rect{XMin: 700, XMax: 1280, YMin: 1700, YMax: 1920},
				Rect{XMin: 350, XMax: 650, YMin: 1700, YMax: 1920},
				Rect{XMin: 0, XMax: 300, YMin: 1700, YMax: 1920}),
			// left to right on launcher dock
			Static("static.4", BitStatic4,
				Rect{XMin: 0, XMax: 300, YMin: 1700, YMax: 1920},
				Rect{XMin: 350, XMax: 650, YMin: 1700, YMax: 1920},
				Rect{XMin: 700, XMax: 1280, YMin: 1700, YMax: 1920}),
			// right top to left down, about 30 degrees
			Dynamic("dynamic.1", BitDynamic1,
				Rect{XMin: 800, XMax: 1280, YMin: 800, YMax: 1600},
				Offset{XOffset: -300, XSize: 200, YOffset: 100, YSize: 200},
				Offset{XOffset: -300, XSize: 200, YOffset: 100, YSize: 200}),
		},
		ButtonLimit:     DefaultButtonLimit,
		StatusBar:       Band{YMin: DefaultStatusBarYMin, YMax: DefaultStatusBarYMax},
		DoubleTapWindow: DefaultDoubleTapWindow,
		Implemented:     DefaultImplemented,
	}
}

// Bank returns the definition with the given name.
func (c *Catalog) Bank(name string) (Definition, bool) {
	for _, d := range c.Banks {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// Validate rejects catalogs whose constants cannot be right. It runs once
// at load time, the engine never checks geometry again.
func (c *Catalog) Validate() error {
	if len(c.Banks) == 0 {
		return fmt.Errorf("%w: no banks defined", ErrInvalidGeometry)
	}

	seen := Mask(0)
	names := map[string]bool{}
	for _, d := range c.Banks {
		if d.Bit == 0 || d.Bit&BankBits != d.Bit || d.Bit&(d.Bit-1) != 0 {
			return fmt.Errorf("%w: bank %s: bit 0x%x must be a single bit within 0x%x", ErrInvalidGeometry, d.Name, uint32(d.Bit), uint32(BankBits))
		}
		if seen&d.Bit != 0 {
			return fmt.Errorf("%w: bank %s: bit 0x%x used twice", ErrInvalidGeometry, d.Name, uint32(d.Bit))
		}
		seen |= d.Bit

		if names[d.Name] {
			return fmt.Errorf("%w: bank name %s used twice", ErrInvalidGeometry, d.Name)
		}
		names[d.Name] = true

		if err := validateDefinition(d); err != nil {
			return err
		}
	}

	if c.ButtonLimit <= 0 {
		return fmt.Errorf("%w: button limit must be positive, got %d", ErrInvalidGeometry, c.ButtonLimit)
	}
	if c.StatusBar.YMin > c.StatusBar.YMax {
		return fmt.Errorf("%w: status bar band %d-%d is empty", ErrInvalidGeometry, c.StatusBar.YMin, c.StatusBar.YMax)
	}
	if c.StatusBar.YMax >= c.ButtonLimit {
		return fmt.Errorf("%w: status bar band must lie above the button limit %d", ErrInvalidGeometry, c.ButtonLimit)
	}
	if c.DoubleTapWindow <= 0 {
		return fmt.Errorf("%w: double tap window must be positive, got %s", ErrInvalidGeometry, c.DoubleTapWindow)
	}
	if c.Implemented > MaxMask {
		return fmt.Errorf("%w: implemented mask 0x%x out of range", ErrInvalidGeometry, uint32(c.Implemented))
	}
	return nil
}

func validateDefinition(d Definition) error {
	if d.Stages[0].Kind != StageFixed {
		return fmt.Errorf("%w: bank %s: stage1 must be a fixed rectangle", ErrInvalidGeometry, d.Name)
	}
	for i, s := range d.Stages {
		switch {
		case d.Kind == KindStatic && s.Kind != StageFixed:
			return fmt.Errorf("%w: bank %s: stage%d of a static bank must be fixed", ErrInvalidGeometry, d.Name, i+1)
		case d.Kind == KindDynamic && i > 0 && s.Kind != StageRelative:
			return fmt.Errorf("%w: bank %s: stage%d of a dynamic bank must be relative", ErrInvalidGeometry, d.Name, i+1)
		}

		if s.Kind == StageFixed {
			if s.Rect.XMin >= s.Rect.XMax || s.Rect.YMin >= s.Rect.YMax {
				return fmt.Errorf("%w: bank %s: stage%d rectangle %s is empty", ErrInvalidGeometry, d.Name, i+1, s.Rect)
			}
			continue
		}
		if s.Offset.XSize <= 0 || s.Offset.YSize <= 0 {
			return fmt.Errorf("%w: bank %s: stage%d sizes must be positive", ErrInvalidGeometry, d.Name, i+1)
		}
	}
	return nil
}

// LoadCatalog reads a catalog from an ini file. Keys missing from the
// [general] section keep their defaults; when the file defines any bank
// section the default banks are replaced entirely.
//
//	[general]
//	button_limit = 1900
//	statusbar_y_min = 0
//	statusbar_y_max = 80
//	double_tap = 800ms
//	implemented = 0x11c
//
//	[static.3]
//	bit = 0x4
//	stage1 = 700 1280 1700 1920   ; x_min x_max y_min y_max
//	...
//
//	[dynamic.1]
//	bit = 0x10
//	stage1 = 800 1280 800 1600
//	stage2 = -300 200 100 200     ; x_offset x_size y_offset y_size
func LoadCatalog(path string) (*Catalog, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	c, err := catalogFromINI(file)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

func catalogFromINI(file *ini.File) (*Catalog, error) {
	c := DefaultCatalog()

	general := file.Section("general")
	c.ButtonLimit = general.Key("button_limit").MustInt(c.ButtonLimit)
	c.StatusBar.YMin = general.Key("statusbar_y_min").MustInt(c.StatusBar.YMin)
	c.StatusBar.YMax = general.Key("statusbar_y_max").MustInt(c.StatusBar.YMax)
	c.DoubleTapWindow = general.Key("double_tap").MustDuration(c.DoubleTapWindow)
	if general.HasKey("implemented") {
		m, err := parseBits(general.Key("implemented").String())
		if err != nil {
			return nil, fmt.Errorf("general.implemented: %w", err)
		}
		c.Implemented = m
	}

	var banks []Definition
	for _, sec := range file.Sections() {
		kind, ok := bankKind(sec.Name())
		if !ok {
			continue
		}

		d, err := definitionFromSection(sec, kind)
		if err != nil {
			return nil, err
		}
		banks = append(banks, d)
	}

	if len(banks) > 0 {
		// static banks are evaluated before dynamic ones
		sort.SliceStable(banks, func(i, j int) bool { return banks[i].Kind < banks[j].Kind })
		c.Banks = banks
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func bankKind(section string) (Kind, bool) {
	switch {
	case strings.HasPrefix(section, "static."):
		return KindStatic, true
	case strings.HasPrefix(section, "dynamic."):
		return KindDynamic, true
	default:
		return 0, false
	}
}

func definitionFromSection(sec *ini.Section, kind Kind) (Definition, error) {
	d := Definition{Name: sec.Name(), Kind: kind}

	bit, err := parseBits(sec.Key("bit").String())
	if err != nil {
		return d, fmt.Errorf("%s.bit: %w", sec.Name(), err)
	}
	d.Bit = bit

	for i := range d.Stages {
		key := fmt.Sprintf("stage%d", i+1)
		values, err := parseInts(sec.Key(key).String())
		if err != nil || len(values) != 4 {
			return d, fmt.Errorf("%w: %s.%s needs four integers", ErrInvalidGeometry, sec.Name(), key)
		}

		if kind == KindDynamic && i > 0 {
			d.Stages[i] = Relative(Offset{XOffset: values[0], XSize: values[1], YOffset: values[2], YSize: values[3]})
		} else {
			d.Stages[i] = Fixed(Rect{XMin: values[0], XMax: values[1], YMin: values[2], YMax: values[3]})
		}
	}
	return d, nil
}

func parseInts(s string) ([]int, error) {
	fields := strings.Fields(s)
	values := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func parseBits(s string) (Mask, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a bit mask", ErrInvalidGeometry, s)
	}
	return Mask(v), nil
}

// WriteTo renders the catalog in the format LoadCatalog reads.
func (c *Catalog) WriteTo(w io.Writer) (int64, error) {
	file := ini.Empty()

	general, err := file.NewSection("general")
	if err != nil {
		return 0, err
	}
	keys := [][2]string{
		{"button_limit", strconv.Itoa(c.ButtonLimit)},
		{"statusbar_y_min", strconv.Itoa(c.StatusBar.YMin)},
		{"statusbar_y_max", strconv.Itoa(c.StatusBar.YMax)},
		{"double_tap", c.DoubleTapWindow.String()},
		{"implemented", fmt.Sprintf("0x%x", uint32(c.Implemented))},
	}
	for _, kv := range keys {
		if _, err := general.NewKey(kv[0], kv[1]); err != nil {
			return 0, err
		}
	}

	for _, d := range c.Banks {
		sec, err := file.NewSection(d.Name)
		if err != nil {
			return 0, err
		}
		if _, err := sec.NewKey("bit", fmt.Sprintf("0x%x", uint32(d.Bit))); err != nil {
			return 0, err
		}
		for i, s := range d.Stages {
			var v string
			if s.Kind == StageRelative {
				v = fmt.Sprintf("%d %d %d %d", s.Offset.XOffset, s.Offset.XSize, s.Offset.YOffset, s.Offset.YSize)
			} else {
				v = fmt.Sprintf("%d %d %d %d", s.Rect.XMin, s.Rect.XMax, s.Rect.YMin, s.Rect.YMax)
			}
			if _, err := sec.NewKey(fmt.Sprintf("stage%d", i+1), v); err != nil {
				return 0, err
			}
		}
	}

	return file.WriteTo(w)
}
