package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration is an elapsed time serialized as "HH:MM:SS" over JSON and stored
// as integer seconds. Hours are not capped at 24.
type Duration time.Duration

// DurationFrom converts a time.Duration.
func DurationFrom(d time.Duration) Duration {
	return Duration(d)
}

// ParseWorkDuration accepts "HH:MM:SS", "HH:MM", or a bare number of seconds.
func ParseWorkDuration(value string) (Duration, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return 0, fmt.Errorf("duration is empty")
	}

	if !strings.Contains(raw, ":") {
		secs, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", value)
		}
		return Duration(time.Duration(secs * float64(time.Second))), nil
	}

	parts := strings.Split(raw, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid duration %q: expected HH:MM:SS", value)
	}

	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q: expected HH:MM:SS", value)
		}
		nums[i] = n
	}
	if len(nums) == 2 {
		nums = append(nums, 0)
	}
	if nums[1] > 59 || nums[2] > 59 {
		return 0, fmt.Errorf("invalid duration %q: minutes and seconds must be below 60", value)
	}

	total := time.Duration(nums[0])*time.Hour +
		time.Duration(nums[1])*time.Minute +
		time.Duration(nums[2])*time.Second
	return Duration(total), nil
}

// Std returns the native time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) Seconds() int64 {
	return int64(time.Duration(d) / time.Second)
}

func (d Duration) String() string {
	total := d.Seconds()
	if total < 0 {
		total = -total
	}
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] != '"' {
		// Bare numbers are treated as seconds.
		var secs float64
		if err := json.Unmarshal(data, &secs); err != nil {
			return fmt.Errorf("duration must be a string or number: %w", err)
		}
		*d = Duration(time.Duration(secs * float64(time.Second)))
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	parsed, err := ParseWorkDuration(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer, storing whole seconds.
func (d Duration) Value() (driver.Value, error) {
	return d.Seconds(), nil
}

// Scan implements sql.Scanner.
func (d *Duration) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = 0
		return nil
	case int64:
		*d = Duration(time.Duration(v) * time.Second)
		return nil
	case float64:
		*d = Duration(time.Duration(v * float64(time.Second)))
		return nil
	case string:
		parsed, err := ParseWorkDuration(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Duration", src)
	}
}
