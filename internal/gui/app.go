package gui

import (
	"errors"
	"fmt"
	"fpgaterm/internal/config"
	"fpgaterm/internal/i18n"
	"fpgaterm/internal/logger"
	"fpgaterm/internal/serialio"
	"fpgaterm/internal/session"
	"fpgaterm/pkg/datatypes"
	"fpgaterm/pkg/utils"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// App is the single-window front end. Widgets are only touched on the fyne goroutine;
// receiver output arrives through fyne.Do.
type App struct {
	fyneApp fyne.App
	window  fyne.Window
	config  *config.Config
	ctrl    *session.Controller
	version string

	// === 连接区域 ===
	portSelect *widget.Select
	connectBtn *widget.Button
	refreshBtn *widget.Button

	// === 显示设置 ===
	dataWidthCombo *widget.Select
	columnsEntry   *widget.Entry
	viewModeCombo  *widget.Select

	// === 矩阵输入 ===
	inputText *widget.Entry
	sendBtn   *widget.Button

	// === 系统输出 ===
	outputLabel  *widget.Label
	outputScroll *container.Scroll
	clearBtn     *widget.Button
}

// NewApp wires the real serial stack to a new fyne application.
func NewApp(cfg *config.Config, version string) *App {
	fyneApp := app.NewWithID("com.fpgaterm.matrixui")

	client := serialio.NewClient(serialio.Options{
		ReadTimeout:  cfg.ReadTimeout(),
		PollInterval: cfg.PollInterval(),
	})
	ctrl := session.New(session.Options{
		Client:    client,
		ListPorts: utils.ListSerialPorts,
		Post:      fyne.Do,
	})
	return newApp(fyneApp, cfg, ctrl, version)
}

func newApp(fyneApp fyne.App, cfg *config.Config, ctrl *session.Controller, version string) *App {
	window := fyneApp.NewWindow(i18n.T("window.title"))
	window.Resize(fyne.NewSize(cfg.Window.Width, cfg.Window.Height))
	window.CenterOnScreen()

	return &App{
		fyneApp: fyneApp,
		window:  window,
		config:  cfg,
		ctrl:    ctrl,
		version: version,
	}
}

// ShowAndRun 显示并运行应用程序
func (a *App) ShowAndRun() {
	a.initUI()
	a.window.ShowAndRun()
}

// initUI 初始化用户界面
func (a *App) initUI() {
	a.createUIElements()
	a.setupValidators()

	a.connectBtn.OnTapped = a.ctrl.ToggleConnection
	a.refreshBtn.OnTapped = a.populateSerialPorts
	a.sendBtn.OnTapped = func() {
		a.ctrl.Send(a.inputText.Text)
	}
	a.clearBtn.OnTapped = a.ctrl.Clear

	a.portSelect.OnChanged = a.ctrl.SelectPort
	a.dataWidthCombo.OnChanged = func(s string) {
		a.ctrl.SetDataWidth(datatypes.ParseDataWidth(s))
	}
	a.viewModeCombo.OnChanged = func(s string) {
		a.ctrl.SetViewMode(datatypes.ParseViewMode(s))
	}
	a.columnsEntry.OnChanged = func(s string) {
		if cols, err := parseColumns(s); err == nil {
			a.ctrl.SetWrapColumns(cols)
		}
	}

	a.ctrl.Output().OnChange = a.showOutput
	a.ctrl.OnConnectionChange(a.updateConnectionStateUI)

	a.window.SetOnClosed(func() {
		if a.ctrl.IsConnected() {
			a.ctrl.Disconnect()
		}
		logger.Info("Window closed")
	})

	a.window.SetContent(a.createMainLayout())
	a.populateSerialPorts()
	a.updateConnectionStateUI(a.ctrl.IsConnected())

	logger.Info(fmt.Sprintf("UI ready (v%s, language %s)", a.version, i18n.GetCurrentLanguage()))
}

// createUIElements 创建UI元素
func (a *App) createUIElements() {
	a.portSelect = widget.NewSelect([]string{}, nil)
	a.portSelect.PlaceHolder = i18n.T("connection.port_placeholder")
	a.connectBtn = widget.NewButton(i18n.T("connection.connect"), nil)
	a.refreshBtn = widget.NewButton(i18n.T("connection.refresh"), nil)

	a.dataWidthCombo = widget.NewSelect(datatypes.DataWidthOptions(), nil)
	a.dataWidthCombo.SetSelected(datatypes.WIDTH_8.String())

	a.columnsEntry = widget.NewEntry()
	a.columnsEntry.SetText("0")

	a.viewModeCombo = widget.NewSelect(datatypes.ViewModeOptions(), nil)
	a.viewModeCombo.SetSelected(datatypes.ASCII.String())

	a.inputText = widget.NewMultiLineEntry()
	a.inputText.Wrapping = fyne.TextWrapWord
	a.inputText.SetMinRowsVisible(5)
	a.sendBtn = widget.NewButton(i18n.T("input.send"), nil)
	a.sendBtn.Importance = widget.HighImportance

	a.outputLabel = widget.NewLabel("")
	a.outputLabel.TextStyle = fyne.TextStyle{Monospace: true}
	a.outputLabel.Wrapping = fyne.TextWrapBreak
	a.outputScroll = container.NewVScroll(a.outputLabel)
	a.outputScroll.SetMinSize(fyne.NewSize(0, 240))
	a.clearBtn = widget.NewButton(i18n.T("output.clear"), nil)
}

// setupValidators 设置验证器
func (a *App) setupValidators() {
	a.columnsEntry.Validator = func(s string) error {
		_, err := parseColumns(s)
		return err
	}
}

// createMainLayout 创建主布局
func (a *App) createMainLayout() fyne.CanvasObject {
	top := container.NewVBox(a.addConnectionArea(), a.addSettingsArea())

	split := container.NewVSplit(a.addInputArea(), a.addOutputArea())
	split.SetOffset(0.3)

	return container.NewBorder(top, nil, nil, nil, split)
}

func (a *App) addConnectionArea() fyne.CanvasObject {
	portContainer := container.New(&minWidthLayout{width: 220}, a.portSelect)
	row := container.NewHBox(
		widget.NewLabel(i18n.T("connection.port")),
		portContainer,
		a.connectBtn,
		a.refreshBtn,
		layout.NewSpacer(),
	)
	return widget.NewCard("", i18n.T("connection.title"), row)
}

func (a *App) addSettingsArea() fyne.CanvasObject {
	dataWidthContainer := container.New(&fixedWidthLayout{width: 100}, a.dataWidthCombo)
	columnsContainer := container.New(&fixedWidthLayout{width: 60}, a.columnsEntry)
	viewModeContainer := container.New(&minWidthLayout{width: 110}, a.viewModeCombo)

	row := container.NewHBox(
		widget.NewLabel(i18n.T("settings.data_width")),
		dataWidthContainer,
		widget.NewLabel(i18n.T("settings.columns")),
		columnsContainer,
		widget.NewLabel(i18n.T("settings.columns_hint")),
		widget.NewLabel(i18n.T("settings.view_mode")),
		viewModeContainer,
		layout.NewSpacer(),
	)
	return widget.NewCard("", i18n.T("settings.title"), row)
}

func (a *App) addInputArea() fyne.CanvasObject {
	content := container.NewBorder(
		widget.NewLabel(i18n.T("input.label")),
		container.NewCenter(a.sendBtn),
		nil, nil,
		a.inputText,
	)
	return widget.NewCard("", i18n.T("input.title"), content)
}

func (a *App) addOutputArea() fyne.CanvasObject {
	content := container.NewBorder(nil, container.NewCenter(a.clearBtn), nil, nil, a.outputScroll)
	return widget.NewCard("", i18n.T("output.title"), content)
}

// === 事件处理方法 ===

// populateSerialPorts 枚举并填充串口列表
func (a *App) populateSerialPorts() {
	ports := a.ctrl.RefreshPorts()
	a.portSelect.SetOptions(ports)
	if len(ports) > 0 {
		a.portSelect.SetSelected(ports[0])
	} else {
		a.portSelect.ClearSelected()
	}
}

func (a *App) updateConnectionStateUI(connected bool) {
	if connected {
		a.connectBtn.SetText(i18n.T("connection.disconnect"))
		a.portSelect.Disable()
		a.refreshBtn.Disable()
	} else {
		a.connectBtn.SetText(i18n.T("connection.connect"))
		a.portSelect.Enable()
		a.refreshBtn.Enable()
	}
}

func (a *App) showOutput(text string) {
	a.outputLabel.SetText(text)
	a.outputScroll.ScrollToBottom()
}

var errColumns = errors.New("columns must be a non-negative integer")

func parseColumns(s string) (int, error) {
	cols, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || cols < 0 {
		return 0, errColumns
	}
	return cols, nil
}
