package tasks

import (
	"github.com/burnout909/ai-cpx-app-sub001/redis"
)

type Client struct {
	Sessions SessionTasks
	Scores   ScoreTasks
}

// NewClient is the preferred way of working with session and score records.
func NewClient() (Client, error) {
	sessionsRedisClient, err := redis.NewClient(SessionsDB)
	if err != nil {
		return Client{}, err
	}
	scoresRedisClient, err := redis.NewClient(ScoresDB)
	if err != nil {
		return Client{}, err
	}
	return Client{
		Sessions: SessionTasks{client: sessionsRedisClient},
		Scores:   ScoreTasks{client: scoresRedisClient},
	}, nil
}

func (client *Client) Close() {
	_ = client.Sessions.client.Close()
	_ = client.Scores.client.Close()
}
