package handlers

import (
	"context"
	"sync"

	"github.com/centrifuge/go-substrate-rpc-client/v2/client"
	"github.com/centrifuge/go-substrate-rpc-client/v2/config"
	gethrpc "github.com/centrifuge/go-substrate-rpc-client/v2/gethrpc"
	"github.com/centrifuge/go-substrate-rpc-client/v2/types"
	"github.com/pkg/errors"

	"github.com/plugnet/plug-api-types-go/models"
)

// AuthorSubmitExtrinsic submits a signed extrinsic and returns its hash
func AuthorSubmitExtrinsic(cli client.Client, xt models.VersionedExtrinsic) (types.Hash, error) {
	enc, err := xt.Hex()
	if err != nil {
		return types.Hash{}, err
	}

	var res string
	err = cli.Call(&res, "author_submitExtrinsic", enc)
	if err != nil {
		return types.Hash{}, errors.Wrap(err, "author_submitExtrinsic")
	}
	return types.NewHashFromHexString(res)
}

// AuthorSubmitAndWatchExtrinsic submits a signed extrinsic and subscribes to its status updates
func AuthorSubmitAndWatchExtrinsic(cli client.Client, xt models.VersionedExtrinsic) (*ExtrinsicStatusSubscription, error) { //nolint:lll
	ctx, cancel := context.WithTimeout(context.Background(), config.Default().SubscribeTimeout)
	defer cancel()

	c := make(chan types.ExtrinsicStatus)

	enc, err := xt.Hex()
	if err != nil {
		return nil, err
	}

	sub, err := cli.Subscribe(ctx, "author", "submitAndWatchExtrinsic", "unwatchExtrinsic", "extrinsicUpdate",
		c, enc)
	if err != nil {
		return nil, errors.Wrap(err, "author_submitAndWatchExtrinsic")
	}

	return &ExtrinsicStatusSubscription{sub: sub, channel: c}, nil
}

// ExtrinsicStatusSubscription is a subscription established through one of the Client's subscribe methods.
type ExtrinsicStatusSubscription struct {
	sub      *gethrpc.ClientSubscription
	channel  chan types.ExtrinsicStatus
	quitOnce sync.Once // ensures quit is closed once
}

// Chan returns the subscription channel.
//
// The channel is closed when Unsubscribe is called on the subscription.
func (s *ExtrinsicStatusSubscription) Chan() <-chan types.ExtrinsicStatus {
	return s.channel
}

// Err returns the subscription error channel. The intended use of Err is to schedule
// resubscription when the client connection is closed unexpectedly.
//
// The error channel receives a value when the subscription has ended due
// to an error. The received error is nil if Close has been called
// on the underlying client and no other error has occurred.
//
// The error channel is closed when Unsubscribe is called on the subscription.
func (s *ExtrinsicStatusSubscription) Err() <-chan error {
	return s.sub.Err()
}

// Unsubscribe unsubscribes the notification and closes the error channel.
// It can safely be called more than once.
func (s *ExtrinsicStatusSubscription) Unsubscribe() {
	s.sub.Unsubscribe()
	s.quitOnce.Do(func() {
		close(s.channel)
	})
}
