package s2_normalize

import "sort"

// FractionalRanks returns 1-based ascending ranks (1 = smallest).
// Equal values share the mean of the positions they occupy.
func FractionalRanks(values []float64) []float64 {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[order[j+1]] == values[order[i]] {
			j++
		}
		// positions i..j (0-based) → mean of i+1..j+1
		mean := float64(i+j+2) / 2
		for k := i; k <= j; k++ {
			ranks[order[k]] = mean
		}
		i = j + 1
	}
	return ranks
}

// PercentileScores maps values to (0, 100] by how favorably each compares to the rest.
// With higherIsBetter=false the smallest raw value scores highest.
func PercentileScores(values []float64, higherIsBetter bool) []float64 {
	n := len(values)
	if n == 0 {
		return nil
	}

	keyed := values
	if !higherIsBetter {
		keyed = make([]float64, n)
		for i, v := range values {
			keyed[i] = -v
		}
	}

	ranks := FractionalRanks(keyed)
	scores := make([]float64, n)
	for i, r := range ranks {
		scores[i] = r / float64(n) * 100
	}
	return scores
}
