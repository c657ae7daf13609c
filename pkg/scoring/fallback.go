package scoring

import (
	"fmt"
	"strings"

	"github.com/scentaustralia/leadgen/pkg/models"
)

// fallbackRiskNote is always attached to deterministic assessments so
// downstream users know the result was not AI-verified.
const fallbackRiskNote = "Automated scoring only; not AI-verified"

// fallbackAssess computes a deterministic assessment from independently
// verifiable signals. Same input always yields the same output.
func fallbackAssess(lead models.Lead, profile TargetProfile) *models.Assessment {
	score := 20 // baseline viability
	var factors []string

	// Contact completeness, max 30
	if lead.Email != "" {
		score += 15
		factors = append(factors, "has email (+15)")
	}
	if lead.Phone != "" {
		score += 10
		factors = append(factors, "has phone (+10)")
	}
	if lead.Website != "" {
		score += 5
		factors = append(factors, "has website (+5)")
	}

	// Industry match against the target list
	industryPoints := industryMatchPoints(lead.Industry, profile.Industries)
	switch industryPoints {
	case 30:
		factors = append(factors, fmt.Sprintf("target industry %q (+30)", lead.Industry))
	case 10:
		factors = append(factors, fmt.Sprintf("related industry %q (+10)", lead.Industry))
	}
	score += industryPoints

	// Location bonus
	switch {
	case matchesMajorCity(lead.Location, profile.MajorCities):
		score += 20
		factors = append(factors, "major city location (+20)")
	case strings.TrimSpace(lead.Location) != "":
		score += 5
		factors = append(factors, "has location (+5)")
	}

	score = clampScore(score)

	reasoning := "Automated scoring based on available data."
	if len(factors) > 0 {
		reasoning = "Automated scoring based on available data: " + strings.Join(factors, ", ")
	}

	return &models.Assessment{
		Score:               score,
		Priority:            string(priorityForScore(score)),
		Fit:                 string(fitForScore(score)),
		Reasoning:           reasoning,
		IndustryRelevance:   industryRelevance(industryPoints),
		RecommendedProducts: recommendedProducts(lead.Industry),
		TalkingPoints:       talkingPoints(lead.Industry),
		NextSteps: []string{
			"Verify contact information",
			"Research company online",
			"Prepare initial outreach",
		},
		RiskFactors: []string{fallbackRiskNote},
	}
}

// industryMatchPoints returns 30 for a full case-insensitive match against
// a target industry, 10 for partial keyword overlap, else 0.
func industryMatchPoints(industry string, targets []string) int {
	industry = strings.ToLower(strings.TrimSpace(industry))
	if industry == "" {
		return 0
	}
	for _, t := range targets {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if industry == t || strings.Contains(industry, t) || strings.Contains(t, industry) {
			return 30
		}
	}
	words := strings.Fields(industry)
	for _, t := range targets {
		t = strings.ToLower(t)
		for _, w := range words {
			if len(w) >= 4 && strings.Contains(t, w) {
				return 10
			}
		}
	}
	return 0
}

func matchesMajorCity(location string, cities []string) bool {
	location = strings.ToLower(location)
	if location == "" {
		return false
	}
	for _, c := range cities {
		if c != "" && strings.Contains(location, strings.ToLower(c)) {
			return true
		}
	}
	return false
}

// industryRelevance scales the 0-30 industry component onto 0-100.
func industryRelevance(points int) int {
	return points * 100 / 30
}

func recommendedProducts(industry string) []string {
	industry = strings.ToLower(industry)
	switch {
	case containsAny(industry, "hotel", "hospitality"):
		return []string{"Room Diffusers", "Lobby Scent Systems", "Amenity Lines"}
	case containsAny(industry, "spa", "wellness", "aromatherapy"):
		return []string{"Aromatherapy Oils", "Treatment Room Diffusers", "Relaxation Blends"}
	case containsAny(industry, "retail", "boutique", "fashion"):
		return []string{"Store Ambient Scenting", "Brand Signature Scents", "Display Diffusers"}
	case containsAny(industry, "office", "corporate"):
		return []string{"Office Scenting Systems", "Meeting Room Fresheners", "Productivity Blends"}
	default:
		return []string{"Custom Scent Solutions", "Ambient Diffusers", "Air Care Systems"}
	}
}

func talkingPoints(industry string) []string {
	industry = strings.ToLower(industry)
	points := []string{
		"Scent marketing can increase customer dwell time by up to 40%",
		"Custom fragrance solutions tailored to your brand identity",
	}
	switch {
	case containsAny(industry, "hotel", "hospitality"):
		points = append(points, "Hotels using signature scents report 20% higher guest satisfaction")
	case containsAny(industry, "retail", "boutique"):
		points = append(points, "Retail scenting can boost sales by up to 11%")
	case containsAny(industry, "spa", "wellness"):
		points = append(points, "Therapeutic blends enhance relaxation and treatment outcomes")
	}
	return points
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// fallbackEmail renders the template outreach email used when the AI
// backend is unavailable.
func fallbackEmail(lead models.Lead) string {
	contact := lead.ContactName
	if contact == "" {
		contact = "Business Owner"
	}
	return fmt.Sprintf(`Subject: Elevate %s's Customer Experience with Scent Marketing

Dear %s,

I hope this message finds you well. I'm reaching out from Scent Australia, Australia's leading provider of premium fragrance solutions for businesses.

We specialize in helping businesses like %s create memorable customer experiences through the power of scent. Studies show that strategic scent marketing can significantly enhance brand perception and customer engagement.

I'd love to discuss how a customized scent solution could benefit your business. Would you be open to a brief call this week?

Best regards,
Scent Australia Team

---
Scent Australia | Premium Fragrance Solutions
www.scentaustralia.com.au`, lead.CompanyName, contact, lead.CompanyName)
}
