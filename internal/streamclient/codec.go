package streamclient

import (
	"fmt"

	"github.com/klingon-exchange/sandwichfinder/internal/streamclient/pb"
)

// wireMessage is the only type the custom codec below ever marshals
// or unmarshals: either an outbound subscribe request or an inbound
// envelope, never both in the same call.
type wireMessage struct {
	subscribe *pb.SubscribeRequest
	envelope  *pb.Envelope
}

// rawCodec implements grpc's encoding.Codec against wireMessage,
// letting the stream move bytes without a generated protobuf message
// type — the same "known wire shape, hand-rolled struct" approach the
// teacher uses for its own libp2p protocol framing.
type rawCodec struct{}

const codecName = "sandwichwire"

func (rawCodec) Name() string { return codecName }

func (rawCodec) Marshal(v any) ([]byte, error) {
	msg, ok := v.(*wireMessage)
	if !ok {
		return nil, fmt.Errorf("streamclient: codec cannot marshal %T", v)
	}
	if msg.subscribe == nil {
		return nil, fmt.Errorf("streamclient: only subscribe requests are sent")
	}
	return msg.subscribe.Marshal()
}

func (rawCodec) Unmarshal(data []byte, v any) error {
	msg, ok := v.(*wireMessage)
	if !ok {
		return fmt.Errorf("streamclient: codec cannot unmarshal into %T", v)
	}
	env, err := pb.Unmarshal(data)
	if err != nil {
		return err
	}
	msg.envelope = env
	return nil
}
