package compose

import (
	"image"

	"handsynth/internal/domain"
)

// Page geometry. Width is fixed; height grows with the line count.
const (
	PageWidth  = 2400
	PageCenter = PageWidth / 2

	baseHeight     = 400
	leftIndent     = 400
	obstacleMargin = 20
	padMargin      = 60
)

// defaultX computes the alignment-based horizontal position for a line of
// the given pixel width.
func defaultX(alignment domain.Alignment, lineWidth int) int {
	switch alignment {
	case domain.AlignRight:
		return PageWidth - lineWidth
	case domain.AlignMiddle:
		return PageCenter - lineWidth/2
	default:
		return leftIndent
	}
}

// avoidObstacle returns the final x for a line whose default extent collides
// with the obstacle. Collision requires overlap on both axes; a clear line
// keeps its default position. The both-sides tie-break compares remaining
// room using only this line's default extent, independently per line.
func avoidObstacle(x, y, lineWidth, lineHeight int, obstacle image.Rectangle, wrap domain.WrapStyle) int {
	if obstacle.Min.Y > y+lineHeight || y > obstacle.Max.Y {
		return x
	}
	if x >= obstacle.Max.X || x+lineWidth <= obstacle.Min.X {
		return x
	}

	switch wrap {
	case domain.WrapLeft:
		return obstacle.Min.X - lineWidth - obstacleMargin
	case domain.WrapRight:
		return obstacle.Max.X + obstacleMargin
	default: // both: route to the side with more horizontal room
		if obstacle.Min.X > PageWidth-obstacle.Max.X {
			return obstacle.Min.X - lineWidth - obstacleMargin
		}
		return obstacle.Max.X + obstacleMargin
	}
}
