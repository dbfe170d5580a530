package fluid

// boundaryCollide pins wall-normal velocity on the outer ring. The far
// column and row also lose their tangential velocity and become SOLID.
func boundaryCollide(g *Grid) {
	top, right := g.rows-1, g.cols-1

	for x := 0; x < g.cols; x++ {
		g.At(x, 0).Vel[AxisY] = 0

		c := g.At(x, top)
		c.Vel = [2]float64{}
		c.Type = Solid
	}
	for y := 0; y < g.rows; y++ {
		g.At(0, y).Vel[AxisX] = 0

		c := g.At(right, y)
		c.Vel = [2]float64{}
		c.Type = Solid
	}
}
