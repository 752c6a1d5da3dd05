package photojobs

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	"github.com/disintegration/imaging"

	"github.com/safaconnect/tournament-engine/models"
	"github.com/safaconnect/tournament-engine/repositories"
	"github.com/safaconnect/tournament-engine/storage"
)

const tileSize = 256

// Compositor builds a team's composite photo from the live photos of its
// verified registrations.
type Compositor interface {
	ComposeTeamPhoto(ctx context.Context, teamID int) error
}

type imagingCompositor struct {
	teamRepo         repositories.TeamRepository
	registrationRepo repositories.RegistrationRepository
	uploader         storage.FileUploader
	logger           *slog.Logger
}

func NewCompositor(
	teamRepo repositories.TeamRepository,
	registrationRepo repositories.RegistrationRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) Compositor {
	return &imagingCompositor{
		teamRepo:         teamRepo,
		registrationRepo: registrationRepo,
		uploader:         uploader,
		logger:           logger,
	}
}

// ComposeTeamPhoto stitches the verified members' live photos into a square
// grid and replaces the team's photo with it. Teams without verified
// members keep their current photo.
func (c *imagingCompositor) ComposeTeamPhoto(ctx context.Context, teamID int) error {
	team, err := c.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return err
	}

	verified := models.VerificationVerified
	registrations, err := c.registrationRepo.ListByTournament(ctx, team.TournamentID, &verified)
	if err != nil {
		return err
	}

	var tiles []image.Image
	for _, reg := range registrations {
		if reg.TeamID == nil || *reg.TeamID != teamID || reg.LivePhotoKey == "" {
			continue
		}
		blob, err := c.uploader.Download(ctx, reg.LivePhotoKey)
		if err != nil {
			c.logger.Warn("skipping member photo in team composite",
				slog.Int("registration_id", reg.ID),
				slog.Any("error", err))
			continue
		}
		img, err := imaging.Decode(bytes.NewReader(blob))
		if err != nil {
			c.logger.Warn("skipping undecodable member photo",
				slog.Int("registration_id", reg.ID),
				slog.Any("error", err))
			continue
		}
		tiles = append(tiles, imaging.Fill(img, tileSize, tileSize, imaging.Center, imaging.Lanczos))
	}
	if len(tiles) == 0 {
		c.logger.Info("no verified member photos for team composite", slog.Int("team_id", teamID))
		return nil
	}

	composite := composeGrid(tiles)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, composite, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return fmt.Errorf("could not encode team composite: %w", err)
	}

	key := storage.PhotoKey("teams/composites", ".jpg")
	if _, err := c.uploader.Upload(ctx, key, "image/jpeg", &buf); err != nil {
		return fmt.Errorf("could not upload team composite: %w", err)
	}

	oldKey := team.PhotoKey
	if err := c.teamRepo.UpdatePhotoKey(ctx, teamID, &key); err != nil {
		_ = c.uploader.Delete(ctx, key)
		return err
	}
	if oldKey != nil && *oldKey != "" {
		if err := c.uploader.Delete(ctx, *oldKey); err != nil {
			c.logger.Warn("could not delete replaced team photo",
				slog.String("key", *oldKey),
				slog.Any("error", err))
		}
	}

	c.logger.Info("team composite photo updated",
		slog.Int("team_id", teamID),
		slog.Int("members", len(tiles)),
		slog.String("key", key))
	return nil
}

// composeGrid lays the tiles out on the smallest square-ish grid that fits
// them, left to right, top to bottom.
func composeGrid(tiles []image.Image) image.Image {
	cols := int(math.Ceil(math.Sqrt(float64(len(tiles)))))
	rows := (len(tiles) + cols - 1) / cols

	canvas := imaging.New(cols*tileSize, rows*tileSize, color.White)
	for i, tile := range tiles {
		x := (i % cols) * tileSize
		y := (i / cols) * tileSize
		canvas = imaging.Paste(canvas, tile, image.Pt(x, y))
	}
	return canvas
}
