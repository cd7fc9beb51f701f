package usecase

import (
	"context"

	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
	storeport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/port"
)

// SendMessageInput carries the data needed to append a new message.
// Content/attachment validation and defaults live in messaging.NewMessage,
// invoked by the store on append.
type SendMessageInput struct {
	ConversationID string
	SenderID       string
	Content        string
	Type           messaging.MessageType
	ParentID       *string
	Attachments    []messaging.Attachment
}

// SendMessageUseCase appends a message durably. The returned message carries
// its assigned id and ordering key; its return is the only signal callers may
// treat as "sent".
type SendMessageUseCase struct {
	Store storeport.MessageStore
}

func NewSendMessageUseCase(store storeport.MessageStore) *SendMessageUseCase {
	return &SendMessageUseCase{Store: store}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*messaging.Message, error) {
	if in.ConversationID == "" || in.SenderID == "" {
		return nil, messaging.ErrValidation
	}
	msg, err := uc.Store.Append(ctx, storeport.AppendMessageParams{
		ConversationID: in.ConversationID,
		SenderID:       in.SenderID,
		Content:        in.Content,
		Type:           in.Type,
		ParentID:       in.ParentID,
		Attachments:    in.Attachments,
	})
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return msg, nil
}
