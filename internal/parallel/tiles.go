package parallel

import "image"

// TileSize is the default tile edge in pixels.
const TileSize = 32

// SplitTiles covers a width × height frame with size × size tiles in
// row-major order. Edge tiles are clipped to the frame.
func SplitTiles(width, height, size int) []image.Rectangle {
	if width <= 0 || height <= 0 {
		return nil
	}
	if size <= 0 {
		size = TileSize
	}

	tilesX := (width + size - 1) / size
	tilesY := (height + size - 1) / size
	tiles := make([]image.Rectangle, 0, tilesX*tilesY)
	for ty := range tilesY {
		for tx := range tilesX {
			x0, y0 := tx*size, ty*size
			tiles = append(tiles, image.Rect(x0, y0, min(x0+size, width), min(y0+size, height)))
		}
	}
	return tiles
}
