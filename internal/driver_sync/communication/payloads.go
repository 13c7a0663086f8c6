package communication

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fleet-sync-server/internal/driver_sync/domain"
)

var _dateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// CommandID extracts the id of a command accepted by the API. The id comes
// either as the data itself or inside the first object of data.
func CommandID(data any) (string, bool) {
	switch v := data.(type) {
	case string:
		v = strings.TrimSpace(v)
		return v, v != ""
	case map[string]any:
		value, ok := firstField(v, "commandId", "command_id", "id")
		if !ok {
			return "", false
		}
		return CommandID(value)
	case []any:
		if len(v) == 0 {
			return "", false
		}
		return CommandID(v[0])
	default:
		n, ok := asLooseInt(v)
		if !ok {
			return "", false
		}
		return strconv.FormatInt(n, 10), true
	}
}

// StoredDriversFromData reads the driver list reported by a device. The API
// answers either with a list of {position, driverId} objects or with an
// object keyed by memory position.
func StoredDriversFromData(data any) (domain.StoredDrivers, error) {
	result := domain.StoredDrivers{}
	switch v := data.(type) {
	case []any:
		for i, item := range v {
			row, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: driver entry %d is %T", ErrMalformedResponse, i, item)
			}
			position := i + 1
			if value, ok := firstField(row, "position", "posicao", "slot"); ok {
				n, ok := asLooseInt(value)
				if !ok {
					return nil, fmt.Errorf("%w: driver entry %d has invalid position", ErrMalformedResponse, i)
				}
				position = int(n)
			}
			value, ok := firstField(row, "driverId", "ibutton", "id")
			if !ok {
				return nil, fmt.Errorf("%w: driver entry %d without driver id", ErrMalformedResponse, i)
			}
			id, ok := asLooseInt(value)
			if !ok {
				return nil, fmt.Errorf("%w: driver entry %d has invalid driver id", ErrMalformedResponse, i)
			}
			result[position] = domain.DriverID(id)
		}
	case map[string]any:
		for key, value := range v {
			position, err := strconv.Atoi(key)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid memory position %q", ErrMalformedResponse, key)
			}
			id, ok := asLooseInt(value)
			if !ok {
				return nil, fmt.Errorf("%w: invalid driver id at position %d", ErrMalformedResponse, position)
			}
			result[position] = domain.DriverID(id)
		}
	case string:
		if strings.TrimSpace(v) != "" {
			return nil, fmt.Errorf("%w: unexpected driver list %q", ErrMalformedResponse, v)
		}
	default:
		return nil, fmt.Errorf("%w: unexpected driver list type %T", ErrMalformedResponse, data)
	}
	return result, nil
}

// BulkPageFromData reads a paginated listing:
// {current_page, per_page, last_page, total, data: [...]}.
func BulkPageFromData(data any) (domain.BulkPage, error) {
	body, ok := data.(map[string]any)
	if !ok {
		return domain.BulkPage{}, fmt.Errorf("%w: paginated data is %T", ErrMalformedResponse, data)
	}

	rows, ok := body["data"].([]any)
	if !ok {
		return domain.BulkPage{}, fmt.Errorf("%w: paginated data without rows", ErrMalformedResponse)
	}

	page := domain.BulkPage{Rows: rows}
	fields := map[string]*int{
		"current_page": &page.CurrentPage,
		"per_page":     &page.PerPage,
		"last_page":    &page.LastPage,
		"total":        &page.Total,
	}
	for name, target := range fields {
		n, ok := asLooseInt(body[name])
		if !ok {
			return domain.BulkPage{}, fmt.Errorf("%w: paginated data without %s", ErrMalformedResponse, name)
		}
		*target = int(n)
	}

	return page, nil
}

// RowsFromData reads a plain, non paginated listing.
func RowsFromData(data any) ([]any, error) {
	switch v := data.(type) {
	case []any:
		return v, nil
	case map[string]any:
		rows := make([]any, 0, len(v))
		for _, row := range v {
			rows = append(rows, row)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("%w: listing data is %T", ErrMalformedResponse, data)
	}
}

// QueueEntriesFromData reads the pending command list returned by the
// command queue endpoint. Dates without an offset are read in loc.
func QueueEntriesFromData(data any, loc *time.Location) ([]domain.CommandQueueEntry, error) {
	if loc == nil {
		loc = time.Local
	}

	items, ok := data.([]any)
	if !ok {
		if single, isMap := data.(map[string]any); isMap {
			if len(single) == 0 {
				return []domain.CommandQueueEntry{}, nil
			}
			items = []any{single}
		} else {
			return nil, fmt.Errorf("%w: queue data is %T", ErrMalformedResponse, data)
		}
	}

	entries := make([]domain.CommandQueueEntry, 0, len(items))
	for i, item := range items {
		row, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: queue entry %d is %T", ErrMalformedResponse, i, item)
		}
		entry := domain.CommandQueueEntry{}
		if id, ok := CommandID(row); ok {
			entry.CommandID = id
		}
		var err error
		if entry.RequestDate, err = parseDate(row["requestDate"], loc); err != nil {
			return nil, err
		}
		if entry.SendDate, err = parseDate(row["sendDate"], loc); err != nil {
			return nil, err
		}
		if entry.ConfirmDate, err = parseDate(row["confirmDate"], loc); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseDate(value any, loc *time.Location) (*time.Time, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return &v, nil
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, nil
		}
		for _, layout := range _dateLayouts {
			if t, err := time.ParseInLocation(layout, v, loc); err == nil {
				return &t, nil
			}
		}
		return nil, fmt.Errorf("%w: invalid date %q", ErrMalformedResponse, v)
	default:
		return nil, fmt.Errorf("%w: invalid date type %T", ErrMalformedResponse, value)
	}
}
