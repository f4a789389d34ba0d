package github

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/kestrel-tetris/kestrel-backend/internal/models"
)

// GitHubService fetches a user's GitHub contribution calendar over the
// GraphQL API and normalises it to models.DailyContribution.
type GitHubService struct {
	githubAPIURL string
	httpClient   *http.Client
}

// NewGitHubService creates a new GitHubService against the public GitHub
// GraphQL endpoint.
func NewGitHubService() *GitHubService {
	return &GitHubService{
		githubAPIURL: "https://api.github.com/graphql",
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

type graphQLQuery struct {
	Query     string         `json:"query"`
	Variables queryVariables `json:"variables"`
}

type queryVariables struct {
	Name string `json:"name"`
	From string `json:"from"`
	To   string `json:"to"`
}

type contributionCalendarResponse struct {
	Data struct {
		User *struct {
			ContributionsCollection *struct {
				ContributionCalendar *struct {
					Weeks []struct {
						ContributionDays []struct {
							Date              string `json:"date"`
							ContributionCount int    `json:"contributionCount"`
						} `json:"contributionDays"`
					} `json:"weeks"`
				} `json:"contributionCalendar"`
			} `json:"contributionsCollection"`
		} `json:"user"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

const contributionCalendarQuery = `
	query ($name: String!, $from: DateTime!, $to: DateTime!) {
		user(login: $name) {
			contributionsCollection(from: $from, to: $to) {
				contributionCalendar {
					weeks {
						contributionDays {
							date
							contributionCount
						}
					}
				}
			}
		}
	}
`

// GetDailyContributions fetches daily contribution counts for username
// between startDate and endDate (inclusive), authenticated with
// githubToken if non-empty.
func (s *GitHubService) GetDailyContributions(username, githubToken string, startDate, endDate time.Time) ([]models.DailyContribution, error) {
	log.Printf("[GitHubService] fetching contributions for %s from %s to %s",
		username, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))

	body, err := json.Marshal(graphQLQuery{
		Query: contributionCalendarQuery,
		Variables: queryVariables{
			Name: username,
			From: startDate.Format(time.RFC3339),
			To:   endDate.Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("github: encoding request body: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.githubAPIURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("github: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if githubToken != "" {
		req.Header.Set("Authorization", "Bearer "+githubToken)
	} else {
		log.Println("[GitHubService] no token provided, requests are subject to GitHub's unauthenticated rate limit")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: sending request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("github: reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github: unexpected status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed contributionCalendarResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("github: decoding response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("github: graphql error: %s", parsed.Errors[0].Message)
	}
	if parsed.Data.User == nil || parsed.Data.User.ContributionsCollection == nil ||
		parsed.Data.User.ContributionsCollection.ContributionCalendar == nil {
		log.Printf("[GitHubService] no contribution data for user %s", username)
		return []models.DailyContribution{}, nil
	}

	var out []models.DailyContribution
	for _, week := range parsed.Data.User.ContributionsCollection.ContributionCalendar.Weeks {
		for _, day := range week.ContributionDays {
			out = append(out, models.DailyContribution{Date: day.Date, Count: day.ContributionCount})
		}
	}

	log.Printf("[GitHubService] fetched %d days of contributions for %s", len(out), username)
	return out, nil
}
