package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/bluff/internal/client"
	"github.com/palemoky/bluff/internal/protocol"
	"github.com/palemoky/bluff/internal/protocol/codec"
	"github.com/palemoky/bluff/internal/ui/common"
	"github.com/palemoky/bluff/internal/ui/view"
)

// Model 终端客户端主模型
type Model struct {
	client   Client
	state    *client.GameState
	userID   string
	username string

	phase    Phase
	notice   string
	err      string
	panel    string // 战绩或排行榜
	showHelp bool
	winner   *protocol.WinnerInfo

	// 断线前的座位，用于提示重连命令
	lastRoom  string
	lastToken string

	input  textinput.Model
	width  int
	height int
}

// New 创建模型，state 由客户端根据推送维护
func New(cl Client, state *client.GameState, userID string) *Model {
	ti := textinput.New()
	ti.Placeholder = "输入命令，help 查看帮助"
	ti.CharLimit = 64
	ti.Width = 48
	ti.Focus()

	return &Model{
		client: cl,
		state:  state,
		userID: userID,
		phase:  PhaseLobby,
		input:  ti,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listenForMessages())
}

func (m *Model) listenForMessages() tea.Cmd {
	return func() tea.Msg {
		msg, err := m.client.Receive()
		if err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ServerMessage{Msg: msg}
	}
}

// Phase 当前阶段
func (m *Model) Phase() Phase { return m.phase }

// Update handles tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case ServerMessage:
		m.handleServerMessage(msg.Msg)
		cmds = append(cmds, m.listenForMessages())

	case ConnectionErrorMsg:
		m.lastRoom = m.state.RoomCode()
		m.lastToken = m.state.ReconnectToken()
		m.phase = PhaseDisconnected
		m.err = fmt.Sprintf("与服务器的连接已断开: %v", msg.Err)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m, m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit 执行输入框中的命令
func (m *Model) submit() tea.Cmd {
	line := strings.TrimSpace(m.input.Value())
	m.input.Reset()

	if m.phase == PhaseGameOver && line == "" {
		m.phase = PhaseLobby
		m.winner = nil
		m.notice = ""
		return nil
	}
	if m.phase == PhaseDisconnected {
		return tea.Quit
	}

	m.err = ""
	m.panel = ""
	if err := m.exec(line); err != nil {
		if errors.Is(err, errQuit) {
			return tea.Quit
		}
		m.err = err.Error()
	}
	return nil
}

// handleServerMessage 根据推送切换阶段和提示，对局数据由 GameState 维护
func (m *Model) handleServerMessage(msg *protocol.Message) {
	switch msg.Type {
	case protocol.MsgRoomCreated:
		if p, err := codec.ParsePayload[protocol.RoomCreatedPayload](msg); err == nil {
			m.notice = fmt.Sprintf("🏠 房间已创建: %s", p.RoomCode)
			m.input.SetValue(fmt.Sprintf("join %s %s", p.RoomCode, p.Username))
			m.input.CursorEnd()
		}

	case protocol.MsgSeatGranted:
		if p, err := codec.ParsePayload[protocol.SeatGrantedPayload](msg); err == nil {
			m.notice = fmt.Sprintf("🪑 已入座房间 %s", p.RoomCode)
			m.phase = PhaseWaiting
		}

	case protocol.MsgReconnected:
		if p, err := codec.ParsePayload[protocol.ReconnectedPayload](msg); err == nil {
			m.notice = fmt.Sprintf("🔗 已重新连接房间 %s", p.RoomCode)
			m.phase = PhaseWaiting
		}

	case protocol.MsgPlayerJoined:
		if p, err := codec.ParsePayload[protocol.PlayerJoinedPayload](msg); err == nil {
			m.notice = fmt.Sprintf("👋 %s 加入了房间", p.Player.Username)
		}

	case protocol.MsgGameState:
		if m.phase == PhaseWaiting || m.phase == PhasePlaying {
			if m.state.Started() {
				m.phase = PhasePlaying
			} else {
				m.phase = PhaseWaiting
			}
		}

	case protocol.MsgBluffResult:
		if p, err := codec.ParsePayload[protocol.BluffResultPayload](msg); err == nil {
			m.notice = view.RenderBluffResult(p, m.state.Players())
		}

	case protocol.MsgGameOver:
		if p, err := codec.ParsePayload[protocol.GameOverPayload](msg); err == nil {
			m.winner = &p.Winner
			m.phase = PhaseGameOver
		}

	case protocol.MsgRoomExists:
		if p, err := codec.ParsePayload[protocol.RoomExistsPayload](msg); err == nil {
			if p.Exists {
				m.notice = fmt.Sprintf("🔎 房间 %s 存在", p.RoomCode)
			} else {
				m.notice = fmt.Sprintf("🔎 房间 %s 不存在", p.RoomCode)
			}
		}

	case protocol.MsgStatsResult:
		if p, err := codec.ParsePayload[protocol.StatsResultPayload](msg); err == nil {
			m.panel = view.StatsView(p)
		}

	case protocol.MsgLeaderboardResult:
		if p, err := codec.ParsePayload[protocol.LeaderboardResultPayload](msg); err == nil {
			m.panel = view.LeaderboardView(p)
		}

	case protocol.MsgError:
		if p, err := codec.ParsePayload[protocol.ErrorPayload](msg); err == nil {
			m.err = fmt.Sprintf("[%d] %s", p.Code, p.Message)
		}
	}
}

// View renders the model.
func (m *Model) View() string {
	width := m.width
	if width == 0 {
		width = 80
	}

	var sb strings.Builder
	switch m.phase {
	case PhaseLobby:
		sb.WriteString(view.LobbyView(width, m.userID))
	case PhaseWaiting:
		sb.WriteString(view.WaitingView(width, m.state))
	case PhasePlaying:
		sb.WriteString(view.GameView(width, m.state, m.userID))
	case PhaseGameOver:
		if m.winner != nil {
			sb.WriteString(view.GameOverView(width, m.winner, m.userID))
		}
	case PhaseDisconnected:
		sb.WriteString(m.disconnectedView(width))
	}

	if m.showHelp && m.phase != PhaseLobby {
		sb.WriteString("\n\n")
		sb.WriteString(view.LobbyHelp())
	}
	if m.panel != "" {
		sb.WriteString("\n\n")
		sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, m.panel))
	}
	if m.notice != "" {
		sb.WriteString("\n\n")
		sb.WriteString(common.NoticeStyle.Render(m.notice))
	}
	if m.err != "" {
		sb.WriteString("\n")
		sb.WriteString(common.ErrorStyle.Render("❌ " + m.err))
	}
	if m.phase != PhaseDisconnected {
		sb.WriteString(common.PromptStyle.Render("\n" + m.input.View()))
	}

	return common.DocStyle.Render(sb.String())
}

func (m *Model) disconnectedView(width int) string {
	var sb strings.Builder
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.TitleStyle("📴 连接已断开")))
	sb.WriteString("\n\n")
	if m.lastRoom != "" && m.lastToken != "" {
		hint := fmt.Sprintf("重新启动客户端以回到房间:\nbluff-client -user %s -room %s -token %s",
			m.userID, m.lastRoom, m.lastToken)
		sb.WriteString(common.BoxStyle.Render(hint))
		sb.WriteString("\n\n")
	}
	sb.WriteString("按回车或 ESC 退出")
	return sb.String()
}
