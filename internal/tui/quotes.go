package tui

import "time"

var quotes = []string{
	"Small steps every day add up to big change.",
	"You don't have to be perfect, just consistent.",
	"The chain only breaks if you let it.",
	"Show up for yourself today.",
	"A habit is a vote for the person you want to become.",
	"Done is better than perfect.",
	"One day or day one. You decide.",
}

// dailyQuote rotates the footer line once per day rather than per frame.
func dailyQuote() string {
	return quotes[time.Now().YearDay()%len(quotes)]
}
