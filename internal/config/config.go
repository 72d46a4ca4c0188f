package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shinramenisbae/mashed/internal/game"
)

type Config struct {
	Port          string
	GiphyKey      string
	GiphyBaseURL  string
	MaxAudioBytes int
	ExportEnabled bool
	ExportFile    string
	Defaults      game.Settings
}

func FromEnv() Config {
	c := Config{}
	c.Port = getenv("PORT", "8080")
	c.GiphyKey = os.Getenv("GIPHY_API_KEY")
	c.GiphyBaseURL = os.Getenv("GIPHY_BASE_URL")
	c.MaxAudioBytes = getint("MAX_AUDIO_BYTES", 2<<20)
	c.ExportEnabled = getenv("EXPORT_ENABLED", "true") == "true"
	c.ExportFile = getenv("EXPORT_FILE", "./mashed-results.txt")

	d := game.DefaultSettings()
	d.TotalRounds = getint("TOTAL_ROUNDS", d.TotalRounds)
	d.RecordingTime = getseconds("RECORDING_SECONDS", d.RecordingTime)
	d.CaptioningTime = getseconds("CAPTIONING_SECONDS", d.CaptioningTime)
	d.VotingTime = getseconds("VOTING_SECONDS", d.VotingTime)
	d.RevealPause = getseconds("REVEAL_PAUSE_SECONDS", d.RevealPause)
	d.InterRoundPause = getseconds("INTER_ROUND_PAUSE_SECONDS", d.InterRoundPause)
	d.PointsPerVote = getint("POINTS_PER_VOTE", d.PointsPerVote)
	d.BonusVotePoints = getint("BONUS_VOTE_POINTS", d.BonusVotePoints)
	d.Participation = getint("PARTICIPATION_POINTS", d.Participation)
	d.RoundWinnerBonus = getint("ROUND_WINNER_BONUS", d.RoundWinnerBonus)
	d.SoundMakerPoints = getint("SOUND_MAKER_POINTS", d.SoundMakerPoints)
	d.MaxCaptionLength = getint("MAX_CAPTION_LENGTH", d.MaxCaptionLength)
	if cats := os.Getenv("BONUS_CATEGORIES"); cats != "" {
		for _, cat := range strings.Split(cats, ",") {
			if cat = strings.TrimSpace(cat); cat != "" {
				d.BonusCategories = append(d.BonusCategories, cat)
			}
		}
	}
	c.Defaults = d
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getseconds(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
