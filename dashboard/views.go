package dashboard

import (
	"fmt"

	"github.com/delaneyj/slotparty/component"
	"github.com/delaneyj/slotparty/dom"
)

type View uint8

const (
	ViewSystem View = iota
	ViewDocker
	ViewNetwork
	ViewProcesses
	ViewLogs
	ViewSettings
)

type NavItem struct {
	View View
	ID   string
	Name string
	Icon string
}

// Views is the sidebar, in display order.
var Views = []NavItem{
	{View: ViewSystem, ID: "system", Name: "System", Icon: "💻"},
	{View: ViewDocker, ID: "docker", Name: "Docker", Icon: "🐳"},
	{View: ViewNetwork, ID: "network", Name: "Network", Icon: "🌐"},
	{View: ViewProcesses, ID: "processes", Name: "Processes", Icon: "⚙️"},
	{View: ViewLogs, ID: "logs", Name: "Logs", Icon: "📝"},
	{View: ViewSettings, ID: "settings", Name: "Settings", Icon: "⚙️"},
}

func (v View) String() string {
	if int(v) < len(Views) {
		return Views[v].ID
	}
	return fmt.Sprintf("View(%d)", uint8(v))
}

func ParseView(id string) (View, error) {
	for _, item := range Views {
		if item.ID == id {
			return item.View, nil
		}
	}
	return 0, fmt.Errorf("unknown view %q", id)
}

// viewFragments picks the main panel for each view.
var viewFragments = map[View]component.Factory{
	ViewSystem:    newSystemPanel,
	ViewDocker:    comingSoon("Docker Containers", "Docker Images", "Docker Volumes"),
	ViewNetwork:   comingSoon("Network Interfaces", "Active Connections", "Network Usage"),
	ViewProcesses: comingSoon("Running Processes", "Process Tree", "Resource Usage"),
	ViewLogs:      comingSoon("System Logs", "Application Logs", "Error Logs"),
	ViewSettings:  comingSoon("App Settings", "Theme Settings", "Notification Settings"),
}

func comingSoon(titles ...string) component.Factory {
	return func(component.Context) component.Fragment {
		return component.NewStatic(func() []dom.Node {
			grid := dom.NewElement("div")
			grid.SetAttr("class", "grid")
			for _, title := range titles {
				p := dom.NewElement("p")
				p.SetTextContent("Coming Soon")
				dom.Append(grid, newCard(title, p))
			}
			return []dom.Node{grid}
		})
	}
}

func newCard(title string, body ...dom.Node) *dom.Element {
	card := dom.NewElement("div")
	card.SetAttr("class", "card")
	h3 := dom.NewElement("h3")
	h3.SetTextContent(title)
	dom.Append(card, h3)
	for _, n := range body {
		dom.Append(card, n)
	}
	return card
}
