package datatypes

// ViewMode 接收数据的显示模式
type ViewMode int

const (
	ASCII ViewMode = iota
	RAW_HEX
)

// String 返回显示模式的界面名称
func (vm ViewMode) String() string {
	switch vm {
	case ASCII:
		return "ASCII"
	case RAW_HEX:
		return "Raw Hex"
	default:
		return "ASCII"
	}
}

// ViewModeOptions lists the selector entries in display order.
func ViewModeOptions() []string {
	return []string{ASCII.String(), RAW_HEX.String()}
}

// ParseViewMode maps a selector label back to a ViewMode. Unknown labels fall back to ASCII.
func ParseViewMode(s string) ViewMode {
	switch s {
	case "Raw Hex":
		return RAW_HEX
	default:
		return ASCII
	}
}

// DataWidth 数据位宽
//
// The width is shown in the UI and kept in session state for structured matrix display,
// but no parsing or formatting path applies it yet.
type DataWidth int

const (
	WIDTH_8 DataWidth = iota
	WIDTH_16
)

func (dw DataWidth) String() string {
	switch dw {
	case WIDTH_8:
		return "8-bit"
	case WIDTH_16:
		return "16-bit"
	default:
		return "8-bit"
	}
}

// BytesPerValue 返回每个值占用的字节数
func (dw DataWidth) BytesPerValue() int {
	if dw == WIDTH_16 {
		return 2
	}
	return 1
}

func DataWidthOptions() []string {
	return []string{WIDTH_8.String(), WIDTH_16.String()}
}

func ParseDataWidth(s string) DataWidth {
	switch s {
	case "16-bit":
		return WIDTH_16
	default:
		return WIDTH_8
	}
}
