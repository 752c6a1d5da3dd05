package services

import (
	"errors"
	"testing"

	"github.com/safaconnect/tournament-engine/models"
)

func soccerSport(extraTime, penalties bool) *models.SportRuleSet {
	return &models.SportRuleSet{
		Code:             "soccer",
		WinPoints:        3,
		DrawPoints:       1,
		ExtraTimeAllowed: extraTime,
		PenaltiesAllowed: penalties,
	}
}

func intRef(v int) *int { return &v }

func TestValidateResult(t *testing.T) {
	tests := []struct {
		name    string
		sport   *models.SportRuleSet
		input   ResultInput
		wantErr error
	}{
		{
			name:  "plain score",
			sport: soccerSport(false, false),
			input: ResultInput{HomeScore: 2, AwayScore: 1},
		},
		{
			name:    "negative score",
			sport:   soccerSport(false, false),
			input:   ResultInput{HomeScore: -1, AwayScore: 0},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "extra time missing away leg",
			sport:   soccerSport(true, true),
			input:   ResultInput{HomeScore: 1, AwayScore: 1, HomeScoreET: intRef(1)},
			wantErr: ErrResultScoresRequired,
		},
		{
			name:    "penalties missing home leg",
			sport:   soccerSport(true, true),
			input:   ResultInput{HomeScore: 1, AwayScore: 1, AwayPenalty: intRef(3)},
			wantErr: ErrResultScoresRequired,
		},
		{
			name:    "extra time not allowed by sport",
			sport:   soccerSport(false, false),
			input:   ResultInput{HomeScore: 1, AwayScore: 1, HomeScoreET: intRef(1), AwayScoreET: intRef(0)},
			wantErr: ErrExtraTimeNotAllowed,
		},
		{
			name:    "penalties not allowed by sport",
			sport:   soccerSport(true, false),
			input:   ResultInput{HomeScore: 1, AwayScore: 1, HomePenalty: intRef(4), AwayPenalty: intRef(2)},
			wantErr: ErrPenaltiesNotAllowed,
		},
		{
			name:  "full knockout result",
			sport: soccerSport(true, true),
			input: ResultInput{
				HomeScore: 1, AwayScore: 1,
				HomeScoreET: intRef(0), AwayScoreET: intRef(0),
				HomePenalty: intRef(5), AwayPenalty: intRef(4),
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateResult(tc.sport, tc.input)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestApplyResultWinnerResolution(t *testing.T) {
	tests := []struct {
		name       string
		input      ResultInput
		wantWinner *int // nil means draw
	}{
		{
			name:       "home win on regular score",
			input:      ResultInput{HomeScore: 2, AwayScore: 0},
			wantWinner: intRef(10),
		},
		{
			name:       "away win on regular score",
			input:      ResultInput{HomeScore: 0, AwayScore: 3},
			wantWinner: intRef(20),
		},
		{
			name:       "draw without penalties",
			input:      ResultInput{HomeScore: 1, AwayScore: 1},
			wantWinner: nil,
		},
		{
			name: "extra time folds into aggregate",
			input: ResultInput{
				HomeScore: 1, AwayScore: 1,
				HomeScoreET: intRef(1), AwayScoreET: intRef(0),
			},
			wantWinner: intRef(10),
		},
		{
			name: "level aggregate decided on penalties",
			input: ResultInput{
				HomeScore: 2, AwayScore: 2,
				HomePenalty: intRef(3), AwayPenalty: intRef(5),
			},
			wantWinner: intRef(20),
		},
		{
			name: "level penalties leave a draw",
			input: ResultInput{
				HomeScore: 0, AwayScore: 0,
				HomePenalty: intRef(4), AwayPenalty: intRef(4),
			},
			wantWinner: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := &models.Fixture{HomeTeamID: 10, AwayTeamID: 20, Status: models.FixtureInProgress}
			applyResult(f, tc.input)

			if f.Status != models.FixtureCompleted {
				t.Errorf("status = %s, want completed", f.Status)
			}
			if f.HomeScore == nil || *f.HomeScore != tc.input.HomeScore {
				t.Errorf("home score not applied: %v", f.HomeScore)
			}

			switch {
			case tc.wantWinner == nil && f.WinnerTeamID != nil:
				t.Errorf("winner = %d, want draw", *f.WinnerTeamID)
			case tc.wantWinner != nil && f.WinnerTeamID == nil:
				t.Errorf("winner = nil, want %d", *tc.wantWinner)
			case tc.wantWinner != nil && *f.WinnerTeamID != *tc.wantWinner:
				t.Errorf("winner = %d, want %d", *f.WinnerTeamID, *tc.wantWinner)
			}
		})
	}
}

func TestApplyResultClearsStaleWinner(t *testing.T) {
	stale := 10
	f := &models.Fixture{HomeTeamID: 10, AwayTeamID: 20, WinnerTeamID: &stale}

	applyResult(f, ResultInput{HomeScore: 1, AwayScore: 1})
	if f.WinnerTeamID != nil {
		t.Errorf("stale winner survived a drawn correction: %d", *f.WinnerTeamID)
	}
}
