package gui

import "fyne.io/fyne/v2"

// fixedWidthLayout is a custom layout that gives its content a fixed width.
type fixedWidthLayout struct {
	width float32
}

func (f *fixedWidthLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) == 0 {
		return
	}
	h := objects[0].MinSize().Height
	objects[0].Resize(fyne.NewSize(f.width, h))
	objects[0].Move(fyne.NewPos(0, (size.Height-h)/2)) // center vertically
}

func (f *fixedWidthLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	if len(objects) == 0 {
		return fyne.NewSize(0, 0)
	}
	return fyne.NewSize(f.width, objects[0].MinSize().Height)
}

// minWidthLayout is a custom layout that ensures its content has a minimum width.
type minWidthLayout struct {
	width float32
}

func (m *minWidthLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) == 0 {
		return
	}
	objects[0].Resize(size)
	objects[0].Move(fyne.NewPos(0, 0))
}

func (m *minWidthLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	if len(objects) == 0 {
		return fyne.NewSize(0, 0)
	}
	childMin := objects[0].MinSize()
	actualWidth := childMin.Width
	if actualWidth < m.width {
		actualWidth = m.width
	}
	return fyne.NewSize(actualWidth, childMin.Height)
}
