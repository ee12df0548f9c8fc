package models

import (
	"fmt"
	"strings"
)

// Actor represents a cast member scraped from a title page
type Actor struct {
	ID            int    `json:"id"`
	FullName      string `json:"full_name"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Character     string `json:"character,omitempty"`
	ProfileURL    string `json:"profile_url,omitempty"`
	KnownForTitle string `json:"known_for_title,omitempty"`
	MovieID       int    `json:"movie_id,omitempty"`
}

// NewActor builds an Actor and derives the display name parts from fullName
func NewActor(fullName, character, profileURL string) Actor {
	fullName = strings.Join(strings.Fields(fullName), " ")
	first, last := SplitName(fullName)
	return Actor{
		FullName:   fullName,
		FirstName:  first,
		LastName:   last,
		Character:  strings.TrimSpace(character),
		ProfileURL: strings.TrimSpace(profileURL),
	}
}

// SplitName splits on the first whitespace run. Single-word names get an empty last name.
func SplitName(fullName string) (first, last string) {
	fields := strings.Fields(fullName)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}

// Info returns the one-line description used in listings
func (a Actor) Info() string {
	return fmt.Sprintf("Actor: %s, Character: %s", a.FullName, a.Character)
}
