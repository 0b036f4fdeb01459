package ml

import (
	"math"
	"math/rand"
)

// TrainTestSplit partitions row indices into train and test sets. It
// attempts a stratified split preserving the label ratio; when stratification
// is infeasible (a class with fewer than two members, or a test partition too
// small to hold every class) it silently falls back to a plain random split
// with the same fraction and seed. It never fails for stratification reasons.
func TrainTestSplit(labels []int, testFraction float64, seed int64) (trainIdx, testIdx []int) {
	if testFraction <= 0 || testFraction >= 1 {
		testFraction = 0.2
	}
	rnd := rand.New(rand.NewSource(seed))

	if train, test, ok := stratifiedSplit(labels, testFraction, rnd); ok {
		return train, test
	}
	return plainSplit(len(labels), testFraction, rnd)
}

func stratifiedSplit(labels []int, testFraction float64, rnd *rand.Rand) (trainIdx, testIdx []int, ok bool) {
	byClass := make(map[int][]int)
	var classes []int
	for i, y := range labels {
		if _, seen := byClass[y]; !seen {
			classes = append(classes, y)
		}
		byClass[y] = append(byClass[y], i)
	}

	for _, c := range classes {
		if len(byClass[c]) < 2 {
			return nil, nil, false
		}
	}
	totalTest := int(math.Round(float64(len(labels)) * testFraction))
	if totalTest < len(classes) || len(labels)-totalTest < len(classes) {
		return nil, nil, false
	}

	for _, c := range classes {
		indices := byClass[c]
		rnd.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		nTest := int(math.Round(float64(len(indices)) * testFraction))
		if nTest < 1 {
			nTest = 1
		}
		if nTest > len(indices)-1 {
			nTest = len(indices) - 1
		}
		testIdx = append(testIdx, indices[:nTest]...)
		trainIdx = append(trainIdx, indices[nTest:]...)
	}
	return trainIdx, testIdx, true
}

func plainSplit(n int, testFraction float64, rnd *rand.Rand) (trainIdx, testIdx []int) {
	perm := rnd.Perm(n)
	nTest := int(math.Round(float64(n) * testFraction))
	if nTest < 1 {
		nTest = 1
	}
	if nTest > n-1 {
		nTest = n - 1
	}
	testIdx = append(testIdx, perm[:nTest]...)
	trainIdx = append(trainIdx, perm[nTest:]...)
	return trainIdx, testIdx
}
