package domain

import (
	"slices"
)

// StoredDrivers maps a device memory slot to the driver stored there. The
// same driver may occupy more than one slot.
type StoredDrivers map[int]DriverID

// Positions returns the occupied slots in ascending order.
func (s StoredDrivers) Positions() []int {
	positions := make([]int, 0, len(s))
	for position := range s {
		positions = append(positions, position)
	}
	slices.Sort(positions)
	return positions
}

// Values returns the stored drivers ordered by slot, duplicates included.
func (s StoredDrivers) Values() []DriverID {
	positions := s.Positions()
	values := make([]DriverID, len(positions))
	for i, position := range positions {
		values[i] = s[position]
	}
	return values
}

// ReconciliationResult is the outcome of comparing a device memory with the
// authoritative driver list. ToRemove and ToInsert drive the device
// commands; the remaining fields describe how they were obtained.
type ReconciliationResult struct {
	ToRemove []DriverID
	ToInsert []DriverID

	NotRegistered       []DriverID
	Duplicated          []DriverID
	UnregisteredLocally []DriverID
	ToReinsert          []DriverID
}

// PermanentRemovals are the removals that are not followed by a reinsertion.
func (r ReconciliationResult) PermanentRemovals() []DriverID {
	result := make([]DriverID, 0, len(r.ToRemove))
	for _, id := range r.ToRemove {
		if !slices.Contains(r.ToReinsert, id) {
			result = append(result, id)
		}
	}
	return result
}

func (r ReconciliationResult) IsEmpty() bool {
	return len(r.ToRemove) == 0 && len(r.ToInsert) == 0
}

// Reconcile computes which drivers must be removed from and inserted into a
// device so that its memory holds exactly one copy of every registered
// driver. A registered driver stored twice is removed and inserted again.
func Reconcile(onDevice StoredDrivers, registered []DriverID) ReconciliationResult {
	deviceValues := onDevice.Values()
	registeredSet := make(map[DriverID]struct{}, len(registered))
	for _, id := range registered {
		registeredSet[id] = struct{}{}
	}

	occurrences := make(map[DriverID]int, len(deviceValues))
	notRegistered := make([]DriverID, 0)
	duplicated := make([]DriverID, 0)
	for _, id := range deviceValues {
		occurrences[id]++
		switch occurrences[id] {
		case 1:
			if _, ok := registeredSet[id]; !ok {
				notRegistered = append(notRegistered, id)
			}
		case 2:
			duplicated = append(duplicated, id)
		}
	}

	unregisteredLocally := make([]DriverID, 0)
	toReinsert := make([]DriverID, 0)
	for _, id := range unique(registered) {
		switch {
		case occurrences[id] == 0:
			unregisteredLocally = append(unregisteredLocally, id)
		case occurrences[id] > 1:
			toReinsert = append(toReinsert, id)
		}
	}

	return ReconciliationResult{
		ToRemove:            unique(append(slices.Clone(notRegistered), duplicated...)),
		ToInsert:            unique(append(slices.Clone(unregisteredLocally), toReinsert...)),
		NotRegistered:       notRegistered,
		Duplicated:          duplicated,
		UnregisteredLocally: unregisteredLocally,
		ToReinsert:          toReinsert,
	}
}

func unique(ids []DriverID) []DriverID {
	seen := make(map[DriverID]struct{}, len(ids))
	result := make([]DriverID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
