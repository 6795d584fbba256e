package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/budgetsim/internal/evaluate"
	"github.com/theirongolddev/budgetsim/internal/model"
	"github.com/theirongolddev/budgetsim/internal/pipeline"
	"github.com/theirongolddev/budgetsim/internal/store"
	"github.com/theirongolddev/budgetsim/internal/wire"

	"github.com/google/uuid"
)

// PlayerHeader carries the player id on API requests.
const PlayerHeader = "X-Player-ID"

const anonymousPlayer = "anonymous"

func (s *Service) handleListSimulations(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sums, err := s.st.ListSimulations(f)
	if err != nil {
		s.recordError(err)
		writeError(w, http.StatusInternalServerError, "listing simulations failed")
		return
	}
	out := make([]wire.SimulationSummary, len(sums))
	for i, sum := range sums {
		out[i] = wire.Summary(sum)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleNextSimulation picks a random simulation the player has not
// completed, falling back to any matching simulation.
func (s *Service) handleNextSimulation(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if f.Category == "" {
		f.Category = model.CategoryBudget
	}

	sums, err := s.st.ListSimulations(f)
	if err != nil {
		s.recordError(err)
		writeError(w, http.StatusInternalServerError, "listing simulations failed")
		return
	}
	done, err := s.st.CompletedIDs(playerID(r), f.Category)
	if err != nil {
		s.recordError(err)
		writeError(w, http.StatusInternalServerError, "loading progress failed")
		return
	}

	var fresh []model.SimulationSummary
	for _, sum := range sums {
		if !done[sum.ID] {
			fresh = append(fresh, sum)
		}
	}
	if len(fresh) == 0 {
		fresh = sums
	}
	if len(fresh) == 0 {
		writeError(w, http.StatusNotFound, "no simulations available")
		return
	}

	pick := fresh[s.picker.Index(len(fresh))]
	sim, err := s.st.GetSimulation(pick.ID)
	if err != nil {
		s.recordError(err)
		writeError(w, http.StatusInternalServerError, "loading simulation failed")
		return
	}
	writeJSON(w, http.StatusOK, wire.Page(sim))
}

func (s *Service) handleGetSimulation(w http.ResponseWriter, r *http.Request) {
	sim, ok := s.loadSimulation(w, r.PathValue("id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, wire.Page(sim))
}

// handleSubmit grades a form-encoded selection. Requests sent with
// X-Requested-With: XMLHttpRequest always get JSON; others are redirected to
// the result page on success.
func (s *Service) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sim, ok := s.loadSimulation(w, r.PathValue("id"))
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	if formID := r.PostForm.Get("simulation_id"); formID != "" && formID != strconv.Itoa(sim.ID) {
		writeError(w, http.StatusBadRequest, "simulation_id does not match the URL")
		return
	}

	raw := r.PostForm.Get("selected_expenses")
	if raw == "" {
		raw = "[]"
	}
	var ids []int
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		writeError(w, http.StatusBadRequest, "selected_expenses must be a JSON array of ids")
		return
	}

	outcome, err := evaluate.Evaluate(sim, ids)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	player := playerID(r)
	now := time.Now()
	xp := 0
	if outcome.Successful {
		reward := s.cfg.Rewards.XPFor(string(sim.Difficulty))
		created, err := s.st.RecordCompletion(model.Completion{
			PlayerID:     player,
			SimulationID: sim.ID,
			Category:     sim.Category,
			Difficulty:   sim.Difficulty,
			XP:           reward,
			CompletedAt:  now,
		})
		if err != nil {
			s.recordError(fmt.Errorf("recording completion: %w", err))
			writeError(w, http.StatusInternalServerError, "recording progress failed")
			return
		}
		if created {
			xp = reward
		}
	}

	result := evaluate.Result(sim, outcome, xp, s.picker)

	attempt := model.Attempt{
		ID:            uuid.NewString(),
		PlayerID:      player,
		SimulationID:  sim.ID,
		Category:      sim.Category,
		Difficulty:    sim.Difficulty,
		Successful:    outcome.Successful,
		TotalSelected: outcome.TotalSelected.StringFixed(2),
		SubmittedAt:   now,
	}
	if err := s.st.RecordAttempt(attempt); err != nil {
		s.recordError(fmt.Errorf("recording attempt: %w", err))
	}
	s.recordSubmission(wire.Event{
		ID:            attempt.ID,
		At:            now,
		PlayerID:      player,
		SimulationID:  sim.ID,
		Successful:    outcome.Successful,
		TotalSelected: outcome.TotalSelected.InexactFloat64(),
		XPEarned:      xp,
	})

	if r.Header.Get("X-Requested-With") != "XMLHttpRequest" {
		if sr, ok := result.(model.SuccessResult); ok {
			q := wire.ResultQuery{
				SimulationID:  sr.SimID,
				Selected:      sr.SelectedIDs,
				TotalSelected: sr.TotalSelected,
				MonthlyIncome: sr.MonthlyIncome,
			}
			http.Redirect(w, r, q.URL("/result"), http.StatusSeeOther)
			return
		}
	}

	resp, err := wire.EncodeResult(result, sim.Category)
	if err != nil {
		s.recordError(err)
		writeError(w, http.StatusInternalServerError, "encoding result failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleProgress(w http.ResponseWriter, r *http.Request) {
	player := r.PathValue("id")
	attempts, err := s.st.LoadAttempts(player)
	if err != nil {
		s.recordError(err)
		writeError(w, http.StatusInternalServerError, "loading attempts failed")
		return
	}
	completions, err := s.st.LoadCompletions(player)
	if err != nil {
		s.recordError(err)
		writeError(w, http.StatusInternalServerError, "loading completions failed")
		return
	}

	stats := pipeline.Aggregate(attempts, completions)
	out := wire.Progress{
		PlayerID:     player,
		Attempts:     stats.Attempts,
		Successes:    stats.Successes,
		SuccessRate:  stats.SuccessRate,
		Completions:  stats.Completions,
		TotalXP:      stats.TotalXP,
		XPByCategory: make(map[string]int, len(stats.XPByCategory)),
		ByDifficulty: make(map[string]int, len(stats.ByDifficulty)),
	}
	for c, xp := range stats.XPByCategory {
		out.XPByCategory[c.Slug()] = xp
	}
	for d, n := range stats.ByDifficulty {
		out.ByDifficulty[string(d)] = n
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) loadSimulation(w http.ResponseWriter, rawID string) (*model.Simulation, bool) {
	id, err := strconv.Atoi(rawID)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid simulation id")
		return nil, false
	}
	sim, err := s.st.GetSimulation(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "simulation not found")
		return nil, false
	}
	if err != nil {
		s.recordError(err)
		writeError(w, http.StatusInternalServerError, "loading simulation failed")
		return nil, false
	}
	return sim, true
}

func parseFilter(r *http.Request) (store.Filter, error) {
	var f store.Filter
	q := r.URL.Query()
	if c := q.Get("category"); c != "" {
		cat, ok := model.ParseCategory(c)
		if !ok {
			return f, fmt.Errorf("unknown category %q", c)
		}
		f.Category = cat
	}
	if d := q.Get("difficulty"); d != "" {
		diff, ok := model.ParseDifficulty(d)
		if !ok {
			return f, fmt.Errorf("unknown difficulty %q", d)
		}
		f.Difficulty = diff
	}
	return f, nil
}

func playerID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(PlayerHeader)); id != "" {
		return id
	}
	if id := strings.TrimSpace(r.FormValue("player_id")); id != "" {
		return id
	}
	return anonymousPlayer
}
