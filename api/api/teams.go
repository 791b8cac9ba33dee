/* teams.go
 * Contains the team actions. Teams are admin managed; the emblem is kept inline as a data URL
 */

package api

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"bolao-bot/api/shared"
	"bolao-bot/api/store"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func toTeamView(t store.Team) TeamView {
	return TeamView{ID: t.ID.Hex(), Name: t.Name, Code: t.Code, Emblem: t.Emblem}
}

func toTeamRef(t store.Team) TeamRef {
	return TeamRef{ID: t.ID.Hex(), Name: t.Name, Code: t.Code}
}

// validateTeamInput normalizes the input and builds the stored team (without id)
func validateTeamInput(input TeamInput) (store.Team, error) {
	name := strings.TrimSpace(input.Name)
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if name == "" || code == "" {
		return store.Team{}, fmt.Errorf("%w: team name and code are required", ErrValidation)
	}
	if len(code) != 3 || strings.Trim(code, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") != "" {
		return store.Team{}, fmt.Errorf("%w: team code must be 3 letters, got %q", ErrValidation, code)
	}

	team := store.Team{Name: name, Code: code, Slug: slug.Make(name)}
	if len(input.Emblem) > 0 {
		mime := strings.TrimSpace(input.EmblemType)
		if mime == "" || mime == "application/octet-stream" {
			mime = http.DetectContentType(input.Emblem)
		}
		if !strings.HasPrefix(mime, "image/") {
			return store.Team{}, fmt.Errorf("%w: emblem must be an image, got %s", ErrValidation, mime)
		}
		dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(input.Emblem))
		team.Emblem = &dataURL
	}
	return team, nil
}

// checkTeamUnique returns ErrConflict if another team already uses the name (compared by slug) or the code
func (a *API) checkTeamUnique(ctx context.Context, team store.Team, self primitive.ObjectID) error {
	teams, err := a.Store.ListTeams(ctx)
	if err != nil {
		return err
	}
	for _, other := range teams {
		if other.ID == self {
			continue
		}
		otherSlug := other.Slug
		if otherSlug == "" {
			otherSlug = slug.Make(other.Name)
		}
		if otherSlug == team.Slug {
			return fmt.Errorf("%w: a team named %q already exists", ErrConflict, other.Name)
		}
		if other.Code == team.Code {
			return fmt.Errorf("%w: code %s is used by %s", ErrConflict, team.Code, other.Name)
		}
	}
	return nil
}

// CreateTeam adds a team (admin only)
func (a *API) CreateTeam(ctx context.Context, req *shared.Request, input TeamInput) (TeamView, error) {
	if err := requireAdmin(req); err != nil {
		return TeamView{}, err
	}
	team, err := validateTeamInput(input)
	if err != nil {
		return TeamView{}, err
	}
	if err := a.checkTeamUnique(ctx, team, primitive.NilObjectID); err != nil {
		return TeamView{}, err
	}

	team, err = a.Store.CreateTeam(ctx, team)
	if err != nil {
		return TeamView{}, translateStoreError(err, "team code "+team.Code)
	}

	log.Ctx(ctx).Info().Str("team", team.Name).Str("code", team.Code).Msg("team created")
	req.Success(fmt.Sprintf("Team %s added.", team.Name))
	return toTeamView(team), nil
}

// UpdateTeam changes a team's name and code, and its emblem when a new one is sent (admin only)
func (a *API) UpdateTeam(ctx context.Context, req *shared.Request, teamID string, input TeamInput) (TeamView, error) {
	if err := requireAdmin(req); err != nil {
		return TeamView{}, err
	}
	id, err := parseID(teamID, "team")
	if err != nil {
		return TeamView{}, err
	}
	existing, err := a.Store.GetTeam(ctx, id)
	if err != nil {
		return TeamView{}, translateStoreError(err, "team")
	}

	team, err := validateTeamInput(input)
	if err != nil {
		return TeamView{}, err
	}
	if err := a.checkTeamUnique(ctx, team, id); err != nil {
		return TeamView{}, err
	}

	team.ID = id
	if err := a.Store.UpdateTeam(ctx, team); err != nil {
		return TeamView{}, translateStoreError(err, "team")
	}
	if team.Emblem == nil {
		team.Emblem = existing.Emblem
	}

	req.Success(fmt.Sprintf("Team %s updated.", team.Name))
	return toTeamView(team), nil
}

// DeleteTeam removes a team that no round references (admin only)
func (a *API) DeleteTeam(ctx context.Context, req *shared.Request, teamID string) error {
	if err := requireAdmin(req); err != nil {
		return err
	}
	id, err := parseID(teamID, "team")
	if err != nil {
		return err
	}
	team, err := a.Store.GetTeam(ctx, id)
	if err != nil {
		return translateStoreError(err, "team")
	}

	n, err := a.Store.CountRoundsWithTeam(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %s is used in %d round(s)", ErrPreconditionFailed, team.Name, n)
	}

	if err := a.Store.DeleteTeam(ctx, id); err != nil {
		return translateStoreError(err, "team")
	}

	log.Ctx(ctx).Info().Str("team", team.Name).Msg("team deleted")
	req.Success(fmt.Sprintf("Team %s deleted.", team.Name))
	return nil
}

// ListTeams returns every team sorted by name
func (a *API) ListTeams(ctx context.Context) ([]TeamView, error) {
	teams, err := a.Store.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]TeamView, 0, len(teams))
	for _, t := range teams {
		views = append(views, toTeamView(t))
	}
	return views, nil
}

// GetTeam returns a single team
func (a *API) GetTeam(ctx context.Context, teamID string) (TeamView, error) {
	id, err := parseID(teamID, "team")
	if err != nil {
		return TeamView{}, err
	}
	team, err := a.Store.GetTeam(ctx, id)
	if err != nil {
		return TeamView{}, translateStoreError(err, "team")
	}
	return toTeamView(team), nil
}

// teamIndex loads every team keyed by id, used to resolve names inside matches
func (a *API) teamIndex(ctx context.Context) (map[primitive.ObjectID]store.Team, error) {
	teams, err := a.Store.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[primitive.ObjectID]store.Team, len(teams))
	for _, t := range teams {
		index[t.ID] = t
	}
	return index, nil
}

func teamRef(index map[primitive.ObjectID]store.Team, id primitive.ObjectID) TeamRef {
	if t, ok := index[id]; ok {
		return toTeamRef(t)
	}
	return TeamRef{ID: id.Hex(), Name: "?", Code: "???"}
}
