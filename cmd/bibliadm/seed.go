package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/biblioteca-dev/biblioteca/internal/model"
	"github.com/biblioteca-dev/biblioteca/internal/store"
)

// seed inserts a coherent demo dataset in dependency order: parents first so
// every referential check the bulk writer performs can pass.
func seed(ctx context.Context, st *store.Store) error {
	publishers, err := st.CreatePublishers(ctx, []model.PublisherDraft{
		{PublisherName: "Editorial Andina", Country: "Chile", FoundationYear: 1962},
		{PublisherName: "Northlight Press", Country: "Canada", FoundationYear: 1988},
	})
	if err != nil {
		return fmt.Errorf("seed publishers: %w", err)
	}

	users, err := st.CreateUsers(ctx, []model.UserDraft{
		{
			Name: "Ana Reyes", Address: "12 Calle Sur", Phone: "555-0101",
			Email: "ana.reyes@example.com",
			RegistrationDate: model.NewDate(2023, time.March, 4), UserType: "member",
		},
		{
			Name: "Bruno Keller", Address: "77 Elm Road", Phone: "555-0102",
			Email: "bruno.keller@example.com",
			RegistrationDate: model.NewDate(2023, time.June, 18), UserType: "member",
		},
		{
			Name: "Carla Mendez", Address: "3 Harbor Way", Phone: "555-0103",
			Email: "carla.mendez@example.com",
			RegistrationDate: model.NewDate(2024, time.January, 9), UserType: "librarian",
		},
	})
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	books, err := st.CreateBooks(ctx, []model.BookDraft{
		{
			Title: "Cartography of Rivers", Author: "M. Duarte", Category: "geography",
			PublicationYear: 2015, Status: "available", Type: "hardcover",
			PublisherID: publishers[0].ID,
		},
		{
			Title: "The Quiet Archive", Author: "H. Lindqvist", Category: "fiction",
			PublicationYear: 2021, Status: "available", Type: "paperback",
			PublisherID: publishers[1].ID,
		},
	})
	if err != nil {
		return fmt.Errorf("seed books: %w", err)
	}

	events, err := st.CreateEvents(ctx, []model.EventDraft{
		{
			EventName: "Summer Reading Kickoff", Description: "Season opening with author readings",
			EventDate: model.NewDate(2024, time.June, 21), EventType: "reading", Capacity: 80,
		},
		{
			EventName: "Map Workshop", Description: "Hands-on historical cartography",
			EventDate: model.NewDate(2024, time.September, 14), EventType: "workshop", Capacity: 20,
		},
	})
	if err != nil {
		return fmt.Errorf("seed events: %w", err)
	}

	if _, err := st.CreateLoans(ctx, []model.LoanDraft{
		{
			BookID: books[0].ID, UserID: users[0].ID,
			LoanDate: model.NewDate(2024, time.July, 1), Renewals: 1,
			Status: "active", LibrarianID: users[2].ID,
		},
		{
			BookID: books[1].ID, UserID: users[1].ID,
			LoanDate: model.NewDate(2024, time.July, 3), Renewals: 0,
			Status: "active", LibrarianID: users[2].ID,
		},
	}); err != nil {
		return fmt.Errorf("seed loans: %w", err)
	}

	if _, err := st.CreateFines(ctx, users[0].ID, []model.FineDraft{
		{
			Reason: "late return", Amount: decimal.RequireFromString("4.50"),
			StartDate: model.NewDate(2024, time.May, 2), EndDate: model.NewDate(2024, time.May, 16),
		},
	}); err != nil {
		return fmt.Errorf("seed fines: %w", err)
	}

	if _, err := st.CreateRegistrations(ctx, []model.EventRegistrationDraft{
		{EventID: events[0].ID, UserID: users[0].ID, RegistrationDate: model.NewDate(2024, time.June, 1)},
		{EventID: events[0].ID, UserID: users[1].ID, RegistrationDate: model.NewDate(2024, time.June, 2)},
		{EventID: events[1].ID, UserID: users[1].ID, RegistrationDate: model.NewDate(2024, time.August, 30)},
	}); err != nil {
		return fmt.Errorf("seed registrations: %w", err)
	}

	return nil
}
