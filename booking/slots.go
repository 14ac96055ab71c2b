package booking

import (
	"fmt"
	"strconv"
	"strings"
)

// Window is a generated slot boundary pair, "HH:MM" each.
type Window struct {
	Start string
	End   string
}

// ExpandWindow cuts a schedule window into consecutive slots of
// duration minutes. A trailing remainder shorter than the duration is
// dropped. Malformed times yield an error rather than a partial
// expansion.
func ExpandWindow(startTime, endTime string, duration int) ([]Window, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("invalid slot duration %d", duration)
	}

	start, err := parseMinutes(startTime)
	if err != nil {
		return nil, err
	}
	end, err := parseMinutes(endTime)
	if err != nil {
		return nil, err
	}
	if end <= start {
		return nil, fmt.Errorf("window end %q is not after start %q", endTime, startTime)
	}

	var windows []Window
	for cur := start; cur+duration <= end; cur += duration {
		windows = append(windows, Window{
			Start: formatMinutes(cur),
			End:   formatMinutes(cur + duration),
		})
	}
	return windows, nil
}

// ValidateWindow checks that both times parse and that the window is
// not empty, without expanding it.
func ValidateWindow(startTime, endTime string) error {
	start, err := parseMinutes(startTime)
	if err != nil {
		return err
	}
	end, err := parseMinutes(endTime)
	if err != nil {
		return err
	}
	if end <= start {
		return fmt.Errorf("window end %q is not after start %q", endTime, startTime)
	}
	return nil
}

func parseMinutes(t string) (int, error) {
	hh, mm, ok := strings.Cut(t, ":")
	if !ok {
		return 0, fmt.Errorf("malformed time %q", t)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("malformed time %q", t)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("malformed time %q", t)
	}
	return h*60 + m, nil
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
