package ui

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Purchase is one Buy event shown on the dashboard.
type Purchase struct {
	Block  uint64
	Buyer  string
	Amount string
}

// SaleView is one refresh of the dashboard.
type SaleView struct {
	Sale        string
	Token       string
	Symbol      string
	Status      string
	Price       string
	Raised      string
	Whitelist   string
	Height      uint64
	Sold, Cap   *big.Int
	SoldDisplay string
	CapDisplay  string
	Recent      []Purchase
}

type dashboardModel struct {
	view       *SaleView
	lastUpdate time.Time
	interval   time.Duration
	quitting   bool
	fetcher    func() (*SaleView, error)
	err        string
}

type tickMsg time.Time
type saleFetchedMsg struct {
	view *SaleView
	at   time.Time
}
type saleErrorMsg string

// NewDashboard creates a Bubble Tea program that polls fetcher every interval.
func NewDashboard(interval time.Duration, fetcher func() (*SaleView, error)) *tea.Program {
	return tea.NewProgram(newDashboardModel(interval, fetcher))
}

func newDashboardModel(interval time.Duration, fetcher func() (*SaleView, error)) dashboardModel {
	return dashboardModel{interval: interval, fetcher: fetcher}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), tick(m.interval))
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, m.fetchCmd()
		}

	case tickMsg:
		return m, tea.Batch(m.fetchCmd(), tick(m.interval))

	case saleFetchedMsg:
		m.view = msg.view
		m.lastUpdate = msg.at
		m.err = ""

	case saleErrorMsg:
		m.err = string(msg)
	}
	return m, nil
}

func (m dashboardModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(StyleTitle.Render("Crowdsale Dashboard") + "\n")
	updated := "never"
	if !m.lastUpdate.IsZero() {
		updated = m.lastUpdate.Format("15:04:05")
	}
	sb.WriteString(Meta(fmt.Sprintf("Updated: %s · r to refresh · q to quit", updated)) + "\n\n")

	if m.err != "" {
		sb.WriteString(Err(m.err) + "\n\n")
	}
	v := m.view
	if v == nil {
		sb.WriteString(Meta("Loading...") + "\n")
		return sb.String()
	}

	sb.WriteString(KeyValueBlock("", [][2]string{
		{"Sale", v.Sale},
		{"Token", fmt.Sprintf("%s (%s)", v.Token, v.Symbol)},
		{"Status", StatusLabel(v.Status)},
		{"Price", v.Price},
		{"Sold", fmt.Sprintf("%s / %s", v.SoldDisplay, v.CapDisplay)},
		{"Raised", v.Raised},
		{"Whitelist", v.Whitelist},
		{"Block", fmt.Sprintf("%d", v.Height)},
	}))
	sb.WriteString("\n" + ProgressBar(v.Sold, v.Cap, 40) + "\n\n")

	if len(v.Recent) == 0 {
		sb.WriteString(Meta("No purchases yet.") + "\n")
		return sb.String()
	}
	t := NewTable([]Column{
		{Title: "Block", Width: 8},
		{Title: "Buyer", Width: 14},
		{Title: "Amount", Width: 24},
	})
	for _, p := range v.Recent {
		t.AddRow(Row{fmt.Sprintf("%d", p.Block), Addr(TruncateAddr(p.Buyer)), Val(p.Amount)})
	}
	sb.WriteString(t.Render())
	return sb.String()
}

// StatusLabel colours a sale status.
func StatusLabel(s string) string {
	switch s {
	case "open":
		return StyleSuccess.Render(s)
	case "pending":
		return StyleWarning.Render(s)
	case "finalized":
		return StyleAccent.Render(s)
	default:
		return StyleMeta.Render(s)
	}
}

func (m dashboardModel) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		v, err := m.fetcher()
		if err != nil {
			return saleErrorMsg(err.Error())
		}
		return saleFetchedMsg{view: v, at: time.Now()}
	}
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
