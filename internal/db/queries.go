package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shuuro-server/internal/models"
	"shuuro-server/internal/utils"
)

const queryTimeout = 5 * time.Second

// GameQueries wraps the games collection with the handful of queries
// the match actors and HTTP handlers need.
type GameQueries struct {
	coll *mongo.Collection
}

func (m *MongoDB) GameQueries() *GameQueries {
	return &GameQueries{coll: m.Games()}
}

func (q *GameQueries) GetGame(ctx context.Context, id string) (*models.ShuuroGame, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var g models.ShuuroGame
	err := q.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (q *GameQueries) InsertGame(ctx context.Context, g *models.ShuuroGame) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := q.coll.InsertOne(ctx, g)
	return err
}

func (q *GameQueries) UpdateGame(ctx context.Context, g *models.ShuuroGame) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := q.coll.UpdateOne(ctx, bson.M{"_id": g.ID}, bson.M{"$set": g})
	return err
}

func (q *GameQueries) RemoveGame(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := q.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// FreshGameID mints game ids until one misses the collection.
func (q *GameQueries) FreshGameID(ctx context.Context) (string, error) {
	for {
		id := utils.RandomGameID()
		_, err := q.GetGame(ctx, id)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return id, nil
		}
		if err != nil {
			return "", err
		}
	}
}

// UnfinishedGames returns every game with a negative status that has
// both seats filled; half-open games are deleted on the way.
func (q *GameQueries) UnfinishedGames(ctx context.Context) ([]*models.ShuuroGame, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cur, err := q.coll.Find(ctx, bson.M{"status": bson.M{"$lt": 0}})
	if err != nil {
		return nil, err
	}
	var all []*models.ShuuroGame
	if err := cur.All(ctx, &all); err != nil {
		return nil, err
	}
	games := all[:0]
	for _, g := range all {
		if g.Players[0] == "" || g.Players[1] == "" {
			_ = q.RemoveGame(ctx, g.ID)
			continue
		}
		games = append(games, g)
	}
	return games, nil
}

// profilePageSize is how many finished games a profile page shows.
const profilePageSize = 5

// PlayerGames pages through a player's finished games, newest first.
// The history field is collapsed to the fight move count to keep the
// payload small.
func (q *GameQueries) PlayerGames(ctx context.Context, username string, page int64) ([]*models.ShuuroGame, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.M{"last_clock": -1}).
		SetSkip(page * profilePageSize).
		SetLimit(profilePageSize)
	filter := bson.M{"players": bson.M{"$in": []string{username}}, "status": bson.M{"$gt": 0}}
	cur, err := q.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var games []*models.ShuuroGame
	if err := cur.All(ctx, &games); err != nil {
		return nil, err
	}
	for _, g := range games {
		count := strconv.Itoa(len(g.History[2]))
		g.History = models.History{{count}, {}, {}}
	}
	return games, nil
}

// PlayerQueries wraps the players collection.
type PlayerQueries struct {
	coll *mongo.Collection
}

func (m *MongoDB) PlayerQueries() *PlayerQueries {
	return &PlayerQueries{coll: m.Players()}
}

// CreatePlayer mints random anonymous usernames until the unique _id
// insert succeeds, and returns the winner.
func (p *PlayerQueries) CreatePlayer(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 100; attempt++ {
		username := utils.RandomUsername()
		doc := models.Player{ID: username, Reg: false, CreatedAt: time.Now()}
		opCtx, cancel := context.WithTimeout(ctx, queryTimeout)
		_, err := p.coll.InsertOne(opCtx, doc)
		cancel()
		if err == nil {
			return username, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return "", err
		}
	}
	return "", fmt.Errorf("could not mint a fresh username")
}

func (p *PlayerQueries) GetPlayer(ctx context.Context, username string) (*models.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var player models.Player
	err := p.coll.FindOne(ctx, bson.M{"_id": username}).Decode(&player)
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// EnsureRegistered upserts the Player document for an account that just
// completed the OAuth round-trip.
func (p *PlayerQueries) EnsureRegistered(ctx context.Context, username string) error {
	_, err := p.GetPlayer(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	doc := models.Player{ID: username, Reg: true, CreatedAt: time.Now()}
	_, err = p.coll.InsertOne(ctx, doc)
	return err
}
