package stockstatus

import "fmt"

// PreviewSize is how many members of an alert bucket are shown by name.
const PreviewSize = 3

// Bucket is one alert group truncated to PreviewSize members.
type Bucket[T any] struct {
	Total     int    `json:"total"`
	Items     []T    `json:"items"`
	Remaining int    `json:"remaining"`
	More      string `json:"more"`
}

// NewBucket keeps the listing order of members and truncates to PreviewSize.
func NewBucket[T any](members []T) Bucket[T] {
	shown := members
	if len(shown) > PreviewSize {
		shown = shown[:PreviewSize]
	}
	items := make([]T, len(shown))
	copy(items, shown)

	remaining := len(members) - PreviewSize
	if remaining < 0 {
		remaining = 0
	}
	return Bucket[T]{
		Total:     len(members),
		Items:     items,
		Remaining: remaining,
		More:      RemainderText(remaining),
	}
}

// RemainderText is the trailing line under a truncated bucket, empty when
// nothing was cut.
func RemainderText(remaining int) string {
	if remaining <= 0 {
		return ""
	}
	return fmt.Sprintf("y %d productos más...", remaining)
}

// Alerts groups stock rows into the out of stock and low stock buckets.
type Alerts[T any] struct {
	OutOfStock Bucket[T] `json:"out_of_stock"`
	LowStock   Bucket[T] `json:"low_stock"`
}

func (a Alerts[T]) Empty() bool {
	return a.OutOfStock.Total == 0 && a.LowStock.Total == 0
}

// BuildAlerts splits rows into the two buckets. levelOf returns nil for rows
// without a stock record; those belong to neither bucket.
func BuildAlerts[T any](rows []T, levelOf func(T) *Level) Alerts[T] {
	var out, low []T
	for _, row := range rows {
		level := levelOf(row)
		if level == nil {
			continue
		}
		switch {
		case IsOutOfStock(*level):
			out = append(out, row)
		case IsLow(*level):
			low = append(low, row)
		}
	}
	return Alerts[T]{
		OutOfStock: NewBucket(out),
		LowStock:   NewBucket(low),
	}
}
