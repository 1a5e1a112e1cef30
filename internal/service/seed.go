package service

import (
	"time"

	"scribbles/internal/model"
)

// Demo account seeded on first run.
const (
	DemoUsername    = "user"
	DemoPassword    = "pass"
	DemoDisplayName = "Demo User"
	DemoBio         = "This is a demo account for testing the blog application."
)

// defaultAccounts returns the first-run account list. avatarURL is the demo
// account's generated avatar.
func defaultAccounts(avatarURL string) []model.Account {
	return []model.Account{
		{
			Username:    DemoUsername,
			Password:    DemoPassword,
			DisplayName: DemoDisplayName,
			Bio:         DemoBio,
			Avatar:      avatarURL,
		},
	}
}

// samplePosts returns the first-run post collection, newest first.
func samplePosts(avatarURL string) []model.Post {
	demo := model.Author{
		Username:    DemoUsername,
		DisplayName: DemoDisplayName,
		Avatar:      avatarURL,
	}

	return []model.Post{
		{
			ID:    "1",
			Title: "Getting Started with React",
			Content: "<h1>React Basics</h1>" +
				"<p>React is a JavaScript library for building user interfaces. It's maintained by Facebook and a community of individual developers and companies.</p>" +
				"<p>React can be used as a base in the development of single-page or mobile applications. However, React is only concerned with rendering data to the DOM, and so creating React applications usually requires the use of additional libraries for state management, routing, and interaction with an API.</p>" +
				"<h2>Why React?</h2>" +
				"<p>React's primary feature is its component-based architecture which allows for reusable UI components that manage their own state. This makes it easier to build and maintain complex UIs.</p>" +
				"<p>React's virtual DOM implementation and other optimizations provide a very efficient update and rendering mechanism.</p>",
			Author:    demo,
			CreatedAt: time.Date(2025, 4, 25, 10, 0, 0, 0, time.UTC),
			Likes:     []string{},
			Comments: []model.Comment{
				{
					ID:        "c1",
					Text:      "Great introduction to React! Looking forward to more articles.",
					Author:    demo,
					CreatedAt: time.Date(2025, 4, 26, 8, 30, 0, 0, time.UTC),
				},
			},
			CoverImage: "https://images.unsplash.com/photo-1633356122102-3fe601e05bd2?q=80&w=2070&auto=format&fit=crop",
		},
		{
			ID:    "2",
			Title: "Advanced CSS Techniques",
			Content: "<h1>Modern CSS Techniques</h1>" +
				"<p>CSS has come a long way from its early days. With modern CSS, we can create complex layouts, animations, and effects that previously required JavaScript.</p>" +
				"<h2>CSS Grid Layout</h2>" +
				"<p>CSS Grid Layout is a two-dimensional grid-based layout system aimed at web design. It allows for the creation of complex responsive web design layouts more easily and consistently across browsers.</p>" +
				"<h2>CSS Flexbox</h2>" +
				"<p>Flexbox is a one-dimensional layout method for laying out items in rows or columns. Items flex to fill additional space and shrink to fit into smaller spaces.</p>" +
				"<p>Modern websites often combine Grid for the overall layout and Flexbox for components and smaller elements.</p>",
			Author:     demo,
			CreatedAt:  time.Date(2025, 4, 24, 15, 30, 0, 0, time.UTC),
			Likes:      []string{},
			Comments:   []model.Comment{},
			CoverImage: "https://images.unsplash.com/photo-1507721999472-8ed4421c4af2?q=80&w=2070&auto=format&fit=crop",
		},
	}
}
