package dto

// TrendSubmitDTO 提交趋势
type TrendSubmitDTO struct {
	URL         string   `json:"url" binding:"required" validate:"url,max=1024"`
	Category    string   `json:"category" binding:"required" validate:"max=64"`
	Title       string   `json:"title" validate:"max=255"`
	Description string   `json:"description" validate:"max=2000"`
	Hashtags    []string `json:"hashtags" validate:"max=30,dive,max=64"`
}

// TrendDTO 趋势详情
type TrendDTO struct {
	ID              uint64   `json:"id"`
	SpotterID       uint64   `json:"spotter_id"`
	Status          string   `json:"status"`
	ValidationCount int      `json:"validation_count"`
	PositiveVotes   int      `json:"positive_votes"`
	SkipCount       int      `json:"skip_count"`
	Category        string   `json:"category"`
	URL             string   `json:"url"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Hashtags        []string `json:"hashtags"`
	CapturedAt      string   `json:"captured_at"`
	ContestedAt     string   `json:"contested_at,omitempty"`
}
