package formatoutput

type Input struct {
	RawText string `json:"rawText"`
	Date    string `json:"date"` // YYYY-MM-DD
}

type Output struct {
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}
