package scripts

// Config holds the settings for the yt-dlp extractor.
type Config struct {
	ExtractorPath string // Path to the yt-dlp executable
	Format        string // yt-dlp format selector
}

// GetFormat returns the configured format selector or an audio-only default.
func (cfg *Config) GetFormat() string {
	if cfg.Format != "" {
		return cfg.Format
	}
	return "bestaudio/best"
}

// VideoInfo is the subset of yt-dlp's --dump-single-json output we keep.
type VideoInfo struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Duration   float64 `json:"duration"`
	Extractor  string  `json:"extractor"`
	WebpageURL string  `json:"webpage_url"`
	IsLive     bool    `json:"is_live"`
}
