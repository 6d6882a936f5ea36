package netview

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/dgraph-io/dgo/v210"
	"github.com/dgraph-io/dgo/v210/protos/api"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// minerSchema is the Dgraph predicate set backing one Miner node: a UID
// handle, its controlling coldkey, and its staked amount.
const minerSchema = `
	uid_value: int @index(int) .
	coldkey: string @index(exact) .
	stake: float .
	type Miner {
		uid_value
		coldkey
		stake
	}
`

// Dgraph is a types.NetworkView backed by a live Dgraph cluster, used
// when the validator runs against the shared network graph rather than
// a snapshot passed in by a test.
//
// Grounded on the teacher's dgraph connection setup (single global
// client, schema alteration at init time), adapted into an instance
// type exposing the read-only NetworkView surface instead of a package
// global.
type Dgraph struct {
	client      *dgo.Dgraph
	conn        *grpc.ClientConn
	hasColdkeys bool
	hasStakes   bool
	networkSize int
}

// DialDgraph connects to address and ensures the Miner schema exists.
// hasColdkeys/hasStakes let the caller model a deployment where one
// side-table is intentionally not populated yet (e.g. stake indexing
// rolled out before coldkey indexing).
func DialDgraph(address string, hasColdkeys, hasStakes bool) (*Dgraph, error) {
	conn, err := grpc.Dial(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("netview: dial dgraph: %w", err)
	}

	dc := api.NewDgraphClient(conn)
	client := dgo.NewDgraphClient(dc)

	if err := client.Alter(context.Background(), &api.Operation{Schema: minerSchema}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("netview: alter schema: %w", err)
	}

	log.Println("netview: connected to dgraph and schema set")

	return &Dgraph{client: client, conn: conn, hasColdkeys: hasColdkeys, hasStakes: hasStakes}, nil
}

// Close releases the underlying gRPC connection.
func (d *Dgraph) Close() error {
	return d.conn.Close()
}

type minerRecord struct {
	Coldkey string  `json:"coldkey"`
	Stake   float64 `json:"stake"`
}

func (d *Dgraph) queryMiner(uid uint64) (minerRecord, bool) {
	const q = `query Miner($uid: int) {
		miner(func: eq(uid_value, $uid)) {
			coldkey
			stake
		}
	}`

	resp, err := d.client.NewTxn().QueryWithVars(context.Background(), q, map[string]string{
		"$uid": fmt.Sprintf("%d", uid),
	})
	if err != nil {
		return minerRecord{}, false
	}

	var decoded struct {
		Miner []minerRecord `json:"miner"`
	}
	if err := json.Unmarshal(resp.GetJson(), &decoded); err != nil || len(decoded.Miner) == 0 {
		return minerRecord{}, false
	}
	return decoded.Miner[0], true
}

func (d *Dgraph) ColdkeyOf(uid uint64) (string, bool) {
	if !d.hasColdkeys {
		return "", false
	}
	record, ok := d.queryMiner(uid)
	if !ok || record.Coldkey == "" {
		return "", false
	}
	return record.Coldkey, true
}

func (d *Dgraph) StakeOf(uid uint64) (float64, bool) {
	if !d.hasStakes {
		return 0, false
	}
	record, ok := d.queryMiner(uid)
	if !ok {
		return 0, false
	}
	return record.Stake, true
}

func (d *Dgraph) HasColdkeys() bool { return d.hasColdkeys }
func (d *Dgraph) HasStakes() bool   { return d.hasStakes }

func (d *Dgraph) NetworkSize() int {
	if d.networkSize > 0 {
		return d.networkSize
	}

	const q = `{ count(func: type(Miner)) }`
	resp, err := d.client.NewTxn().Query(context.Background(), q)
	if err != nil {
		return 0
	}
	var decoded struct {
		Count []struct {
			Count int `json:"count"`
		} `json:"count"`
	}
	if err := json.Unmarshal(resp.GetJson(), &decoded); err != nil || len(decoded.Count) == 0 {
		return 0
	}
	d.networkSize = decoded.Count[0].Count
	return d.networkSize
}
