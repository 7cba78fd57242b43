package projections

import (
	"context"

	"eventdesk/internal/adapters/storage/participant"
	"eventdesk/internal/application/listutil"
	domain "eventdesk/internal/domain/participant"
)

// ParticipantPageQuery carries query parameters.
type ParticipantPageQuery struct {
	EventID  int64
	Pageable listutil.Pageable
}

// PageableView echoes the request paging in the response.
type PageableView struct {
	PageNumber int    `json:"pageNumber"`
	PageSize   int    `json:"pageSize"`
	Sort       string `json:"sort,omitempty"`
	Offset     int    `json:"offset"`
}

// ParticipantPage is one page of an event's participants.
type ParticipantPage struct {
	Content       []domain.Participant `json:"content"`
	TotalElements int                  `json:"totalElements"`
	TotalPages    int                  `json:"totalPages"`
	Number        int                  `json:"number"`
	Size          int                  `json:"size"`
	First         bool                 `json:"first"`
	Last          bool                 `json:"last"`
	Pageable      PageableView         `json:"pageable"`
}

// ParticipantPageDeps holds dependencies for ParticipantPage.
type ParticipantPageDeps struct {
	EventStore       EventStore
	ParticipantStore ParticipantStore
}

// QueryParticipantPage retrieves one page of an event's participants.
// PRE: query.Pageable came from listutil.ParsePageable
// POST: Content holds at most Size records; pages past the end are empty with Last set
func QueryParticipantPage(ctx context.Context, query ParticipantPageQuery, deps ParticipantPageDeps) (ParticipantPage, error) {
	if _, err := lookupEvent(ctx, deps.EventStore, query.EventID); err != nil {
		return ParticipantPage{}, err
	}

	total, err := deps.ParticipantStore.CountByEvent(ctx, query.EventID)
	if err != nil {
		return ParticipantPage{}, err
	}
	pi := listutil.NewPageInfo(query.Pageable.Page, query.Pageable.Size, total)

	content := []domain.Participant{}
	if pi.Offset() < total {
		content, err = deps.ParticipantStore.ListByEvent(ctx, query.EventID, participant.ListFilter{
			Limit:  pi.Size,
			Offset: pi.Offset(),
			Sort:   query.Pageable.Sort,
			Dir:    query.Pageable.Dir,
		})
		if err != nil {
			return ParticipantPage{}, err
		}
	}

	return ParticipantPage{
		Content:       content,
		TotalElements: total,
		TotalPages:    pi.TotalPages,
		Number:        pi.Page,
		Size:          pi.Size,
		First:         pi.First(),
		Last:          pi.Last(),
		Pageable: PageableView{
			PageNumber: pi.Page,
			PageSize:   pi.Size,
			Sort:       query.Pageable.SortParam(),
			Offset:     pi.Offset(),
		},
	}, nil
}
