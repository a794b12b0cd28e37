package memory

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type AllocationInfo struct {
	ID          uint64
	Size        int64
	Tag         string
	AllocatedAt time.Time
}

type Stats struct {
	TotalAllocated   int64
	TotalDeallocated int64
	ActiveMats       int
	AllocationCount  int64
}

// Tracker records every safe.Mat created with it so runs can be checked for leaks.
// It satisfies safe.MemoryTracker.
type Tracker struct {
	allocations  map[uint64]AllocationInfo
	mu           sync.RWMutex
	totalAlloc   int64
	totalDealloc int64
	allocCount   int64
}

func NewTracker() *Tracker {
	return &Tracker{
		allocations: make(map[uint64]AllocationInfo),
	}
}

func (mt *Tracker) TrackAllocation(id uint64, size int64, tag string) {
	atomic.AddInt64(&mt.totalAlloc, size)
	atomic.AddInt64(&mt.allocCount, 1)

	mt.mu.Lock()
	mt.allocations[id] = AllocationInfo{
		ID:          id,
		Size:        size,
		Tag:         tag,
		AllocatedAt: time.Now(),
	}
	mt.mu.Unlock()
}

func (mt *Tracker) TrackDeallocation(id uint64, tag string) {
	mt.mu.Lock()
	info, exists := mt.allocations[id]
	if exists {
		delete(mt.allocations, id)
	}
	mt.mu.Unlock()

	if exists {
		atomic.AddInt64(&mt.totalDealloc, info.Size)
	}
}

// Live returns the number of tracked Mats that have not been closed
func (mt *Tracker) Live() int {
	mt.mu.RLock()
	defer mt.mu.RUnlock()
	return len(mt.allocations)
}

// LiveTags lists the tags of open Mats, oldest first
func (mt *Tracker) LiveTags() []string {
	mt.mu.RLock()
	infos := make([]AllocationInfo, 0, len(mt.allocations))
	for _, info := range mt.allocations {
		infos = append(infos, info)
	}
	mt.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })

	tags := make([]string, len(infos))
	for i, info := range infos {
		tags[i] = info.Tag
	}
	return tags
}

func (mt *Tracker) GetStats() Stats {
	mt.mu.RLock()
	active := len(mt.allocations)
	mt.mu.RUnlock()

	return Stats{
		TotalAllocated:   atomic.LoadInt64(&mt.totalAlloc),
		TotalDeallocated: atomic.LoadInt64(&mt.totalDealloc),
		ActiveMats:       active,
		AllocationCount:  atomic.LoadInt64(&mt.allocCount),
	}
}
