package imaging

import "math"

// Vec3 is a point in a three-channel color space.
type Vec3 [3]float64

func (v Vec3) dist2(o Vec3) float64 {
	d0, d1, d2 := v[0]-o[0], v[1]-o[1], v[2]-o[2]
	return d0*d0 + d1*d1 + d2*d2
}

// Clustering is the outcome of KMeans.
type Clustering struct {
	Centers []Vec3
	Labels  []int
	Sizes   []int
}

// KMeans partitions points into at most k clusters with Lloyd's algorithm.
//
// Seeding is deterministic farthest-first starting from the point closest to
// the overall mean, so identical input always yields identical clusters.
// Fewer than k clusters are returned when the points have fewer than k
// distinct values.
func KMeans(points []Vec3, k, maxIter int) Clustering {
	if len(points) == 0 || k <= 0 {
		return Clustering{}
	}

	centers := seedCenters(points, k)
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = -1
	}

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, p := range points {
			best, bestD := 0, math.Inf(1)
			for c, ctr := range centers {
				if d := p.dist2(ctr); d < bestD {
					best, bestD = c, d
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}

		sums := make([]Vec3, len(centers))
		counts := make([]int, len(centers))
		for i, p := range points {
			l := labels[i]
			counts[l]++
			for j := 0; j < 3; j++ {
				sums[l][j] += p[j]
			}
		}
		for c := range centers {
			if counts[c] == 0 {
				continue
			}
			for j := 0; j < 3; j++ {
				centers[c][j] = sums[c][j] / float64(counts[c])
			}
		}
	}

	sizes := make([]int, len(centers))
	for _, l := range labels {
		sizes[l]++
	}
	return Clustering{Centers: centers, Labels: labels, Sizes: sizes}
}

func seedCenters(points []Vec3, k int) []Vec3 {
	var mean Vec3
	for _, p := range points {
		for j := 0; j < 3; j++ {
			mean[j] += p[j]
		}
	}
	for j := 0; j < 3; j++ {
		mean[j] /= float64(len(points))
	}

	first, bestD := 0, math.Inf(1)
	for i, p := range points {
		if d := p.dist2(mean); d < bestD {
			first, bestD = i, d
		}
	}
	centers := []Vec3{points[first]}

	minD := make([]float64, len(points))
	for i, p := range points {
		minD[i] = p.dist2(centers[0])
	}
	for len(centers) < k {
		far, farD := -1, 0.0
		for i, d := range minD {
			if d > farD {
				far, farD = i, d
			}
		}
		if far < 0 {
			break
		}
		c := points[far]
		centers = append(centers, c)
		for i, p := range points {
			if d := p.dist2(c); d < minD[i] {
				minD[i] = d
			}
		}
	}
	return centers
}
