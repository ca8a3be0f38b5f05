package match

import (
	"fmt"
	"strings"

	"github.com/Diblo/csgo-league-bot/internal/draft"
	"github.com/Diblo/csgo-league-bot/internal/league"
	"github.com/Diblo/csgo-league-bot/pkg/types"
)

func notReadyView(missing []draft.Participant) types.PanelView {
	var lines strings.Builder
	for _, p := range missing {
		fmt.Fprintf(&lines, "✖️  %s\n", p.Name)
	}
	return types.PanelView{
		Title:       "Not everyone was ready!",
		Description: lines.String(),
		Footer:      "The missing players have been removed from the queue",
	}
}

func abortView(reason string) types.PanelView {
	return types.PanelView{
		Title:       "There was a problem!",
		Description: reason,
	}
}

func fetchingView() types.PanelView {
	return types.PanelView{Description: "Fetching server..."}
}

func noServersView() types.PanelView {
	return types.PanelView{
		Title:       "There was a problem!",
		Description: "Sorry! Looks like there aren't any servers available at this time. Please try again later.",
	}
}

func matchReadyView(server league.MatchServer, m draft.GameMap, teamOne, teamTwo []draft.Participant) types.PanelView {
	v := types.PanelView{
		Title:       "Match server is ready!",
		Description: fmt.Sprintf("Map: %s %s\nURL: %s\nCommand: `%s`", m.Emoji, m.Name, server.ConnectURL(), server.ConnectCommand()),
		Footer:      "Server will close after 5 minutes if anyone doesn't join",
	}
	for _, team := range [][]draft.Participant{teamOne, teamTwo} {
		var members []string
		for _, p := range team {
			members = append(members, p.Name)
		}
		v.Fields = append(v.Fields, types.Field{
			Name:  fmt.Sprintf("__Team %s__", team[0].Name),
			Value: strings.Join(members, "\n"),
		})
	}
	return v
}
