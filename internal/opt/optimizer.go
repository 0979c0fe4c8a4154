package opt

import (
	"fmt"
	"math"
	"time"

	"lightnav/internal/model"
)

// Strategy names reported on results.
const (
	StrategyTrivial    = "trivial"
	StrategyBruteForce = "brute_force"
	StrategyNN2Opt     = "nn_2opt"
	StrategyHybrid     = "greedy_hybrid"
)

// Result is the outcome of a route-order optimization. Callers must check
// Status: an unavailable matrix yields StatusUnavailable with no order, not
// an error.
type Result struct {
	Status           model.ResultStatus `json:"status"`
	Strategy         string             `json:"strategy"`
	Order            []int              `json:"order"`
	Waypoints        []model.GeoPoint   `json:"waypoints"`
	TotalDurationSec float64            `json:"totalDurationSec"`
	TotalDistanceKM  float64            `json:"totalDistanceKm"`
	DurationText     string             `json:"totalDuration"`
	DistanceText     string             `json:"totalDistance"`
}

// OptimizeOrder computes a visiting order over waypoints minimizing total
// travel time. The first waypoint is fixed as the start and is never
// reordered. Strategy is selected by input size: exhaustive search up to 6
// points, nearest-neighbor seeding plus 2-opt up to 12, and a greedy hybrid
// beyond that. departAt drives the rush-hour duration adjustment.
func OptimizeOrder(waypoints []model.GeoPoint, mx *model.Matrix, departAt time.Time) Result {
	n := len(waypoints)
	if n <= 1 {
		order := []int{}
		if n == 1 {
			order = []int{0}
		}
		return Result{
			Status:       model.StatusOK,
			Strategy:     StrategyTrivial,
			Order:        order,
			Waypoints:    append([]model.GeoPoint(nil), waypoints...),
			DurationText: "0h 0m",
			DistanceText: "0.0",
		}
	}
	if mx == nil || len(mx.Durations) < n || len(mx.Distances) < n {
		return Result{Status: model.StatusUnavailable}
	}

	durations := adjustForRushHour(mx.Durations, mx.Distances, n, departAt)

	var order []int
	var strategy string
	switch {
	case n <= 6:
		order = bruteForceOrder(durations, n)
		strategy = StrategyBruteForce
	case n <= 12:
		order = nearestNeighborOrder(durations, n)
		order = improve2Opt(durations, order)
		strategy = StrategyNN2Opt
	default:
		order = greedyHybridOrder(durations, n)
		strategy = StrategyHybrid
	}

	totalDur := pathCost(durations, order)
	totalDist := pathCost(mx.Distances, order)

	ordered := make([]model.GeoPoint, len(order))
	for i, idx := range order {
		ordered[i] = waypoints[idx]
	}
	return Result{
		Status:           model.StatusOK,
		Strategy:         strategy,
		Order:            order,
		Waypoints:        ordered,
		TotalDurationSec: totalDur,
		TotalDistanceKM:  totalDist,
		DurationText:     FormatDuration(totalDur),
		DistanceText:     fmt.Sprintf("%.1f", totalDist),
	}
}

// FormatDuration renders seconds as "Xh Ym" with floor semantics.
func FormatDuration(sec float64) string {
	hours := int(sec / 3600)
	minutes := int(math.Mod(sec, 3600) / 60)
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// adjustForRushHour returns a copy of the duration matrix with edges inflated
// during the 7-9 and 16-18 rush windows. Short urban edges get the full
// penalty; edges over 30km are assumed to leave the urban core and are left
// alone.
func adjustForRushHour(durations, distances [][]float64, n int, at time.Time) [][]float64 {
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = append([]float64(nil), durations[i][:n]...)
	}
	h := at.Hour()
	rush := (h >= 7 && h <= 9) || (h >= 16 && h <= 18)
	if !rush {
		return out
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			centerFactor := math.Min(1.0, distances[i][j]/30.0)
			out[i][j] *= 1.0 + 0.3*(1.0-centerFactor)
		}
	}
	return out
}

// bruteForceOrder enumerates every permutation of indices 1..n-1 appended to
// the fixed start 0 and keeps the first one achieving the minimum total
// duration. Permutations are generated in lexicographic order so ties break
// deterministically.
func bruteForceOrder(durations [][]float64, n int) []int {
	rest := make([]int, 0, n-1)
	for i := 1; i < n; i++ {
		rest = append(rest, i)
	}
	best := math.Inf(1)
	var bestOrder []int
	candidate := make([]int, 1, n)
	candidate[0] = 0
	var walk func(remaining []int)
	walk = func(remaining []int) {
		if len(remaining) == 0 {
			total := pathCost(durations, candidate)
			if total < best {
				best = total
				bestOrder = append([]int(nil), candidate...)
			}
			return
		}
		for i, idx := range remaining {
			next := make([]int, 0, len(remaining)-1)
			next = append(next, remaining[:i]...)
			next = append(next, remaining[i+1:]...)
			candidate = append(candidate, idx)
			walk(next)
			candidate = candidate[:len(candidate)-1]
		}
	}
	walk(rest)
	return bestOrder
}

// nearestNeighborOrder builds a seed tour by always moving to the cheapest
// unvisited index; ties resolve to the smallest index.
func nearestNeighborOrder(durations [][]float64, n int) []int {
	order := make([]int, 1, n)
	order[0] = 0
	visited := make([]bool, n)
	visited[0] = true
	current := 0
	for len(order) < n {
		nearest := -1
		bestCost := math.Inf(1)
		for i := 1; i < n; i++ {
			if visited[i] {
				continue
			}
			if durations[current][i] < bestCost {
				bestCost = durations[current][i]
				nearest = i
			}
		}
		order = append(order, nearest)
		visited[nearest] = true
		current = nearest
	}
	return order
}

// improve2Opt repeatedly scans pairs (i,j) and reverses order[i:j] whenever
// the two boundary edges it replaces get cheaper, restarting the scan after
// every applied move. Terminates when a full scan finds no improvement, so
// the result is never worse than the seed.
func improve2Opt(durations [][]float64, order []int) []int {
	n := len(order)
	improved := true
	for improved {
		improved = false
	scan:
		for i := 1; i < n-1; i++ {
			for j := i + 1; j < n; j++ {
				current := durations[order[i-1]][order[i]] + durations[order[j-1]][order[j]]
				swapped := durations[order[i-1]][order[j-1]] + durations[order[i]][order[j]]
				if swapped < current {
					reverse(order, i, j-1)
					improved = true
					break scan
				}
			}
		}
	}
	return order
}

func reverse(order []int, lo, hi int) {
	for lo < hi {
		order[lo], order[hi] = order[hi], order[lo]
		lo++
		hi--
	}
}

// greedyHybridOrder is plain nearest-neighbor with a look-ahead: after each
// move it scans the remaining indices for one that is "on the way" to at
// least one other remaining point (detour within 20% of the direct edge) and
// visits the first such point next. No optimality guarantee; it exists to
// reduce zig-zagging on large point sets. The first qualifying point wins,
// not the best-scoring one.
func greedyHybridOrder(durations [][]float64, n int) []int {
	order := []int{0}
	remaining := make([]int, 0, n-1)
	for i := 1; i < n; i++ {
		remaining = append(remaining, i)
	}
	for len(remaining) > 0 {
		current := order[len(order)-1]
		closestPos := 0
		for i := 1; i < len(remaining); i++ {
			if durations[current][remaining[i]] < durations[current][remaining[closestPos]] {
				closestPos = i
			}
		}
		order = append(order, remaining[closestPos])
		remaining = append(remaining[:closestPos], remaining[closestPos+1:]...)

		if len(remaining) >= 2 {
			for pi, point := range remaining {
				connecting := 0
				for _, other := range remaining {
					if other == point {
						continue
					}
					direct := durations[current][other]
					viaPoint := durations[current][point] + durations[point][other]
					if viaPoint < direct*1.2 {
						connecting++
					}
				}
				if connecting > 0 {
					order = append(order, point)
					remaining = append(remaining[:pi], remaining[pi+1:]...)
					break
				}
			}
		}
	}
	return order
}

// pathCost sums consecutive-edge costs along an order.
func pathCost(costs [][]float64, order []int) float64 {
	total := 0.0
	for i := 0; i < len(order)-1; i++ {
		total += costs[order[i]][order[i+1]]
	}
	return total
}
