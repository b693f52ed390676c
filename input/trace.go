package input

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Op is what a trace step does.
type Op int

const (
	// OpAbs feeds an axis update through the coalescer.
	OpAbs Op = iota
	OpScreenOn
	OpScreenOff
	// OpWait advances the replay clock.
	OpWait
)

// Step is one replayable action from a trace file.
type Step struct {
	Op    Op
	Code  uint16
	Value int32
	Wait  time.Duration
	Line  int
}

// ParseTrace reads a recorded touch trace, one action per line:
//
//	x 1000          ABS_MT_POSITION_X
//	y 2000          ABS_MT_POSITION_Y
//	point 1000 2000 both axes
//	lift            ABS_MT_TRACKING_ID -1
//	slot [N]        ABS_MT_SLOT
//	on | off        screen power
//	wait 300ms
//
// Blank lines and text after '#' are ignored.
func ParseTrace(r io.Reader) ([]Step, error) {
	var steps []Step
	scanner := bufio.NewScanner(r)
	line := 0

	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		parsed, err := parseStep(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		for i := range parsed {
			parsed[i].Line = line
		}
		steps = append(steps, parsed...)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}
	return steps, nil
}

func parseStep(fields []string) ([]Step, error) {
	op, args := strings.ToLower(fields[0]), fields[1:]

	switch op {
	case "x", "y":
		if len(args) != 1 {
			return nil, fmt.Errorf("%s needs one value", op)
		}
		v, err := parseValue(args[0])
		if err != nil {
			return nil, err
		}
		code := AbsMTPositionX
		if op == "y" {
			code = AbsMTPositionY
		}
		return []Step{{Op: OpAbs, Code: code, Value: v}}, nil

	case "point":
		if len(args) != 2 {
			return nil, fmt.Errorf("point needs x and y")
		}
		x, err := parseValue(args[0])
		if err != nil {
			return nil, err
		}
		y, err := parseValue(args[1])
		if err != nil {
			return nil, err
		}
		return []Step{
			{Op: OpAbs, Code: AbsMTPositionX, Value: x},
			{Op: OpAbs, Code: AbsMTPositionY, Value: y},
		}, nil

	case "lift":
		return []Step{{Op: OpAbs, Code: AbsMTTrackingID, Value: -1}}, nil

	case "slot":
		var v int32
		if len(args) > 0 {
			var err error
			if v, err = parseValue(args[0]); err != nil {
				return nil, err
			}
		}
		return []Step{{Op: OpAbs, Code: AbsMTSlot, Value: v}}, nil

	case "on":
		return []Step{{Op: OpScreenOn}}, nil

	case "off":
		return []Step{{Op: OpScreenOff}}, nil

	case "wait":
		if len(args) != 1 {
			return nil, fmt.Errorf("wait needs a duration")
		}
		d, err := time.ParseDuration(args[0])
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid duration %q", args[0])
		}
		return []Step{{Op: OpWait, Wait: d}}, nil

	default:
		return nil, fmt.Errorf("unknown trace action %q", fields[0])
	}
}

func parseValue(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	return int32(v), nil
}
