package driver

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

const (
	_dateLayout       = "2006-01-02 15:04:05"
	_rateLimitMessage = "Limite de acessos atingido (20 segundos)"
)

type Equipment struct {
	ID       int64
	Name     string
	Plate    string
	ClientID int64
}

type queuedCommand struct {
	id          string
	deviceID    string
	requestDate time.Time
	confirmed   bool
}

// TrackingAPI fakes the vehicle tracking API. Devices execute commands as
// soon as they are queued unless they are marked offline.
type TrackingAPI struct {
	server *httptest.Server

	mu          sync.Mutex
	key         string
	equipment   []Equipment
	stored      map[string]map[int]int64
	offline     map[string]bool
	queue       []queuedCommand
	nextCommand int
	rateLimited int
	calls       map[string]int
	perPage     int
}

func NewTrackingAPI(key string) *TrackingAPI {
	api := &TrackingAPI{
		key:     key,
		stored:  make(map[string]map[int]int64),
		offline: make(map[string]bool),
		calls:   make(map[string]int),
		perPage: 2,
	}
	api.server = httptest.NewServer(http.HandlerFunc(api.handle))
	return api
}

func (a *TrackingAPI) URL() string {
	return a.server.URL
}

func (a *TrackingAPI) Close() {
	a.server.Close()
}

func (a *TrackingAPI) AddEquipment(equipment Equipment) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.equipment = append(a.equipment, equipment)
}

// StoreDrivers replaces the memory of the device with ids, one per position.
func (a *TrackingAPI) StoreDrivers(deviceID string, ids ...int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	memory := make(map[int]int64, len(ids))
	for i, id := range ids {
		memory[i+1] = id
	}
	a.stored[deviceID] = memory
}

func (a *TrackingAPI) StoredDrivers(deviceID string) []int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	ids := make([]int64, 0, len(a.stored[deviceID]))
	for _, id := range a.stored[deviceID] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (a *TrackingAPI) SetOffline(deviceID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.offline[deviceID] = true
}

// RateLimitNext answers the next n requests with the rate limit error.
func (a *TrackingAPI) RateLimitNext(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rateLimited = n
}

func (a *TrackingAPI) Calls(path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[path]
}

func (a *TrackingAPI) handle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("key") != a.key {
		reply(w, map[string]any{"success": false, "error": 401, "msg": "Chave de acesso inválida"})
		return
	}

	path := r.URL.Path[1:]

	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls[path]++

	if a.rateLimited > 0 {
		a.rateLimited--
		reply(w, map[string]any{"success": false, "error": 1, "msg": _rateLimitMessage})
		return
	}

	deviceID := r.PostForm.Get("deviceId")
	switch path {
	case "getEquipmentList":
		reply(w, ok(a.equipmentPage(r.PostForm.Get("page"))))
	case "sendCommandRequestIButtonList":
		reply(w, ok(map[string]any{"commandId": a.enqueue(deviceID)}))
	case "getIButtonList":
		reply(w, ok(a.driverList(deviceID)))
	case "sendCommandRemoveIButton":
		driverID, _ := strconv.ParseInt(r.PostForm.Get("driverId"), 10, 64)
		commandID := a.enqueue(deviceID)
		if !a.offline[deviceID] {
			a.remove(deviceID, driverID)
		}
		reply(w, ok(map[string]any{"commandId": commandID}))
	case "sendCommandInsertIButton":
		commandID := a.enqueue(deviceID)
		if !a.offline[deviceID] {
			for _, value := range r.PostForm["driverId[]"] {
				driverID, _ := strconv.ParseInt(value, 10, 64)
				a.insert(deviceID, driverID)
			}
		}
		reply(w, ok(map[string]any{"commandId": commandID}))
	case "getPendingCommands":
		reply(w, ok(a.pending(deviceID, r.PostForm.Get("commandId"))))
	default:
		http.NotFound(w, r)
	}
}

func (a *TrackingAPI) equipmentPage(value string) map[string]any {
	page, err := strconv.Atoi(value)
	if err != nil || page < 1 {
		page = 1
	}
	lastPage := (len(a.equipment) + a.perPage - 1) / a.perPage
	if lastPage == 0 {
		lastPage = 1
	}

	rows := []any{}
	for i := (page - 1) * a.perPage; i < len(a.equipment) && i < page*a.perPage; i++ {
		e := a.equipment[i]
		rows = append(rows, map[string]any{
			"id":       e.ID,
			"name":     e.Name,
			"plate":    e.Plate,
			"clientId": strconv.FormatInt(e.ClientID, 10),
		})
	}

	return map[string]any{
		"current_page": page,
		"per_page":     a.perPage,
		"last_page":    lastPage,
		"total":        len(a.equipment),
		"data":         rows,
	}
}

func (a *TrackingAPI) enqueue(deviceID string) string {
	a.nextCommand++
	id := strconv.Itoa(a.nextCommand)
	a.queue = append(a.queue, queuedCommand{
		id:          id,
		deviceID:    deviceID,
		requestDate: time.Now().Add(-10 * time.Minute),
		confirmed:   !a.offline[deviceID],
	})
	return id
}

func (a *TrackingAPI) pending(deviceID, commandID string) []any {
	entries := []any{}
	for _, command := range a.queue {
		if command.deviceID != deviceID || (commandID != "" && command.id != commandID) {
			continue
		}
		entry := map[string]any{
			"commandId":   command.id,
			"requestDate": command.requestDate.Format(_dateLayout),
			"sendDate":    command.requestDate.Add(time.Second).Format(_dateLayout),
			"confirmDate": nil,
		}
		if command.confirmed {
			entry["confirmDate"] = command.requestDate.Add(2 * time.Second).Format(_dateLayout)
		}
		entries = append(entries, entry)
	}
	return entries
}

func (a *TrackingAPI) driverList(deviceID string) []any {
	positions := make([]int, 0, len(a.stored[deviceID]))
	for position := range a.stored[deviceID] {
		positions = append(positions, position)
	}
	sort.Ints(positions)

	rows := make([]any, 0, len(positions))
	for _, position := range positions {
		rows = append(rows, map[string]any{
			"position": position,
			"driverId": a.stored[deviceID][position],
		})
	}
	return rows
}

func (a *TrackingAPI) remove(deviceID string, driverID int64) {
	for position, id := range a.stored[deviceID] {
		if id == driverID {
			delete(a.stored[deviceID], position)
		}
	}
}

func (a *TrackingAPI) insert(deviceID string, driverID int64) {
	memory, ok := a.stored[deviceID]
	if !ok {
		memory = make(map[int]int64)
		a.stored[deviceID] = memory
	}
	for position := 1; ; position++ {
		if _, used := memory[position]; !used {
			memory[position] = driverID
			return
		}
	}
}

func ok(data any) map[string]any {
	return map[string]any{"success": true, "error": 0, "data": data}
}

func reply(w http.ResponseWriter, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		panic(fmt.Errorf("encoding fake tracking api answer: %w", err))
	}
}
