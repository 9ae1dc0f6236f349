package reconciler

import (
	"context"
	"fmt"
	"multisig_svr/chain"
	"multisig_svr/tables"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const journalCollection = "raw_event_journal"

// Journal archives every raw chain event before correlation. Unmatched
// events stay queryable and can be replayed once the local transaction row
// appears; this keeps the lossy drop of unmatched events observable.
type Journal struct {
	Ctx context.Context
	Col *mongo.Collection
}

func NewJournal(ctx context.Context, client *mongo.Client, dbName string) *Journal {
	return &Journal{
		Ctx: ctx,
		Col: client.Database(dbName).Collection(journalCollection),
	}
}

type journalDoc struct {
	Id        string       `bson:"_id"`
	ChainId   string       `bson:"chain_id"`
	Event     *chain.Event `bson:"event"`
	Matched   bool         `bson:"matched"`
	CreatedAt int64        `bson:"created_at"`
}

func (j *Journal) Insert(ev *chain.Event) (string, error) {
	doc := journalDoc{
		Id:        uuid.New().String(),
		ChainId:   ev.ChainId,
		Event:     ev,
		Matched:   false,
		CreatedAt: time.Now().UnixMilli(),
	}
	if _, err := j.Col.InsertOne(j.Ctx, doc); err != nil {
		return "", fmt.Errorf("InsertOne err: %s", err.Error())
	}
	return doc.Id, nil
}

func (j *Journal) MarkMatched(id string) error {
	_, err := j.Col.UpdateOne(j.Ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"matched": true}})
	return err
}

func (j *Journal) FindUnmatched(limit int64) ([]*chain.Event, []string, error) {
	cur, err := j.Col.Find(j.Ctx, bson.M{"matched": false}, options.Find().SetLimit(limit))
	if err != nil {
		return nil, nil, fmt.Errorf("Find err: %s", err.Error())
	}
	defer cur.Close(j.Ctx)
	var events []*chain.Event
	var ids []string
	for cur.Next(j.Ctx) {
		var doc journalDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, nil, fmt.Errorf("Decode err: %s", err.Error())
		}
		events = append(events, doc.Event)
		ids = append(ids, doc.Id)
	}
	return events, ids, cur.Err()
}

// journalEvent and markJournalMatched keep the journal strictly best-effort:
// a mongo failure must never stall the reconciliation pipeline.

func (r *Reconciler) journalEvent(ev *chain.Event) string {
	if r.Journal == nil {
		return ""
	}
	id, err := r.Journal.Insert(ev)
	if err != nil {
		log.Warn("journalEvent err:", ev.ChainId, err.Error())
		return ""
	}
	return id
}

func (r *Reconciler) markJournalMatched(id string) {
	if r.Journal == nil || id == "" {
		return
	}
	if err := r.Journal.MarkMatched(id); err != nil {
		log.Warn("markJournalMatched err:", id, err.Error())
	}
}

// ReplayJournal re-feeds journaled unmatched events through the pipeline.
// Called by the repair pass and the internal ops endpoint: a transaction
// initiated here after its first approval elsewhere becomes correlatable.
func (r *Reconciler) ReplayJournal(limit int64) error {
	if r.Journal == nil {
		return nil
	}
	events, ids, err := r.Journal.FindUnmatched(limit)
	if err != nil {
		return fmt.Errorf("FindUnmatched err: %s", err.Error())
	}
	for i, ev := range events {
		txKey := tables.MultisigTxKey(ev.MultisigAccount, ev.ChainId, ev.CallHash, ev.Block, ev.Index)
		journalId := ids[i]
		event := ev
		resCh := r.Store.AddTask(txKey, func() error {
			return r.handleEvent(txKey, journalId, event)
		})
		if err := <-resCh; err != nil {
			log.Error("ReplayJournal err:", txKey, err.Error())
		}
	}
	return nil
}
