package cost

// Resource is a resource card offered towards a payment.
type Resource struct {
	UID  string
	Name string
}

// CanPay reports whether pool holds at least the required count of every resource name.
func (c Cost) CanPay(pool []Resource) bool {
	_, ok := c.Select(pool)
	return ok
}

// Select picks the resource cards that pay c. Candidates are taken in pool order,
// so callers put the cards they want spent first at the front. It returns the
// chosen uids and whether the cost is fully covered.
func (c Cost) Select(pool []Resource) ([]string, bool) {
	need := make(map[string]int, len(c))
	for name, n := range c {
		need[name] = n
	}

	picked := make([]string, 0, c.Total())
	for _, r := range pool {
		if need[r.Name] > 0 {
			need[r.Name]--
			picked = append(picked, r.UID)
		}
	}

	for _, n := range need {
		if n > 0 {
			return nil, false
		}
	}
	return picked, true
}

// Missing returns the part of c that pool does not cover.
func (c Cost) Missing(pool []Resource) Cost {
	have := map[string]int{}
	for _, r := range pool {
		have[r.Name]++
	}
	missing := Cost{}
	for name, n := range c {
		if d := n - have[name]; d > 0 {
			missing[name] = d
		}
	}
	return missing
}
