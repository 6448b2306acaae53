package http

import (
	"encoding/json"
	"path"

	"github.com/vovakirdan/wirechat-relay/internal/core"
	"github.com/vovakirdan/wirechat-relay/internal/proto"
	"github.com/vovakirdan/wirechat-relay/internal/uploads"
)

// inboundToCommand decodes a client frame. Frames with missing or invalid
// fields map to a nil command and are dropped without a reply.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	if len(inbound.Data) == 0 {
		inbound.Data = json.RawMessage("{}")
	}

	switch inbound.Type {
	case proto.InboundTypeSwitchRoom, proto.InboundTypeJoinRoom:
		var data proto.RoomData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		kind := core.CommandSwitchRoom
		if inbound.Type == proto.InboundTypeJoinRoom {
			kind = core.CommandJoinRoom
		}
		return &core.Command{Kind: kind, Room: data.Room}, nil, nil
	case proto.InboundTypeChatMessage, proto.InboundTypeAdminCommand:
		var data proto.ChatData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		kind := core.CommandSendMessage
		if inbound.Type == proto.InboundTypeAdminCommand {
			kind = core.CommandAdmin
		}
		return &core.Command{
			Kind: kind,
			Room: data.Room,
			Name: data.Name,
			Text: data.Text,
		}, nil, nil
	case proto.InboundTypeFileUploaded:
		var data proto.FileData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if !uploads.IsPublicLink(data.FilePath) {
			return nil, nil, nil
		}
		label := data.Label
		if label == "" {
			label = path.Base(data.FilePath)
		}
		return &core.Command{
			Kind:       core.CommandShareFile,
			Room:       data.Room,
			Name:       data.Name,
			Attachment: &core.Attachment{Link: data.FilePath, Label: label},
		}, nil, nil
	default:
		return nil, &proto.Error{Code: proto.ErrCodeInvalidMessage, Msg: "unknown message type"}, nil
	}
}

func messageToProto(msg core.Message) proto.EventMessage {
	out := proto.EventMessage{
		Room: msg.Room,
		Name: msg.Name,
		Text: msg.Text,
		TS:   msg.CreatedAt.Unix(),
	}
	if msg.Attachment != nil {
		out.Attachment = &proto.Attachment{Link: msg.Attachment.Link, Label: msg.Attachment.Label}
	}
	return out
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventHistory:
		messages := make([]proto.EventMessage, 0, len(event.Messages))
		for _, msg := range event.Messages {
			messages = append(messages, messageToProto(msg))
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventMessageHistory,
			Data: proto.EventHistory{
				Room:     event.Room,
				Messages: messages,
			},
		}
	case core.EventMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventChatMessage,
			Data:  messageToProto(event.Message),
		}
	case core.EventRateLimited:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventRateLimited,
			Data:  proto.EventNotice{Room: event.Room, Text: event.Text},
		}
	case core.EventHistoryCleared:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventHistoryCleared,
			Data:  proto.EventRoom{Room: event.Room},
		}
	case core.EventSystemNotice:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventSystemNotice,
			Data:  messageToProto(event.Message),
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
