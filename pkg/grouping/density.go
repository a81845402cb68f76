package grouping

import (
	"image"
	"math"

	"github.com/gardar/comictrans/pkg/textblock"
)

// Density clustering defaults
const (
	DefaultRadius    = 80.0
	DefaultMinPoints = 1
)

const (
	unvisited = 0
	noise     = -1
)

// DensityCluster groups words with DBSCAN over their centers in pixels.
//
// Two words are neighbours when their centers are at most Radius pixels
// apart. A word with at least MinPoints neighbours (itself included) is a
// core point and every word reachable through core points joins its
// cluster. Words left as noise become single word blocks.
type DensityCluster struct {
	Radius    float64
	MinPoints int
}

// Group implements Strategy. size scales the normalized centers to pixels.
func (s DensityCluster) Group(words []textblock.WordDetection, size image.Point) []textblock.TextBlock {
	if len(words) == 0 {
		return []textblock.TextBlock{}
	}

	radius := s.Radius
	if radius <= 0 {
		radius = DefaultRadius
	}
	minPts := s.MinPoints
	if minPts < 1 {
		minPts = DefaultMinPoints
	}

	points := make([][2]float64, len(words))
	for i, w := range words {
		cx, cy := w.BBox.Center()
		points[i] = [2]float64{cx * float64(size.X), cy * float64(size.Y)}
	}

	labels := dbscan(points, radius, minPts)

	clusters := make(map[int][]textblock.WordDetection)
	var order []int
	var blocks []textblock.TextBlock
	for i, label := range labels {
		if label == noise {
			blocks = append(blocks, textblock.NewBlock([]textblock.WordDetection{words[i]}))
			continue
		}
		if _, ok := clusters[label]; !ok {
			order = append(order, label)
		}
		clusters[label] = append(clusters[label], words[i])
	}

	for _, label := range order {
		members := clusters[label]
		sortReadingOrder(members)
		blocks = append(blocks, textblock.NewBlock(members))
	}

	sortBlocks(blocks)
	return blocks
}

// dbscan labels each point with a cluster id starting at 1, or noise
func dbscan(points [][2]float64, eps float64, minPts int) []int {
	labels := make([]int, len(points))
	cluster := 0

	for i := range points {
		if labels[i] != unvisited {
			continue
		}
		neighbours := regionQuery(points, i, eps)
		if len(neighbours) < minPts {
			labels[i] = noise
			continue
		}

		cluster++
		labels[i] = cluster
		queue := append([]int(nil), neighbours...)
		for len(queue) > 0 {
			j := queue[0]
			queue = queue[1:]

			if labels[j] == noise {
				labels[j] = cluster
			}
			if labels[j] != unvisited {
				continue
			}
			labels[j] = cluster

			if next := regionQuery(points, j, eps); len(next) >= minPts {
				queue = append(queue, next...)
			}
		}
	}
	return labels
}

// regionQuery returns the indices of all points within eps of points[i], i included
func regionQuery(points [][2]float64, i int, eps float64) []int {
	var out []int
	for j, p := range points {
		if math.Hypot(p[0]-points[i][0], p[1]-points[i][1]) <= eps {
			out = append(out, j)
		}
	}
	return out
}
