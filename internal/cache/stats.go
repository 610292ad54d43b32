package cache

import "time"

// AgeBuckets groups live entries by age for operational visibility.
type AgeBuckets struct {
	UnderHour int `json:"under_hour"`
	OneToSix  int `json:"one_to_six_hours"`
	SixToDay  int `json:"six_to_twenty_four_hours"`
	OverDay   int `json:"over_twenty_four_hours"`
}

// Stats describes the cache's current occupancy.
type Stats struct {
	Size     int        `json:"size"`
	Capacity int        `json:"capacity"`
	Expired  int        `json:"expired"`
	Ages     AgeBuckets `json:"ages"`
}

// Stats returns occupancy counters and an age histogram of live entries.
// Expired entries still resident (not yet lazily evicted) are counted
// separately and excluded from the age buckets.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Size:     c.lru.Len(),
		Capacity: c.capacity,
	}

	now := c.now()
	for _, key := range c.lru.Keys() {
		e, ok := c.lru.Peek(key)
		if !ok {
			continue
		}
		age := now.Sub(e.CreatedAt)
		if age > c.ttl {
			s.Expired++
			continue
		}
		switch {
		case age < time.Hour:
			s.Ages.UnderHour++
		case age < 6*time.Hour:
			s.Ages.OneToSix++
		case age < 24*time.Hour:
			s.Ages.SixToDay++
		default:
			s.Ages.OverDay++
		}
	}
	return s
}
