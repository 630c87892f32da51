package handlers

const (
	keyStartText   = "Hi! I am the assistant bot of the <b>«{{ .chat }}»</b> chat.\n\nI help with onboarding and moderation.\nMain commands:\n• /rules — chat rules\n• /welcome — short onboarding\n• /help — what I can do"
	keyRulesText   = "📜 <b>Rules of the «{{ .chat }}» chat</b>\n\n1. Stay on topic: neural networks, code, automation, projects and the pains of members.\n2. No spam or grey advertising. Want to share your product? Write to an admin first.\n3. Respect above all: no toxicity, attacks or personal fights.\n4. A question about code or a neural network = context + what you already tried. This saves time for you and others.\n5. Politics and flame wars are off. We train brains and neural networks here, not nerves.\n6. Admins and the bot may delete messages and restrict access without long debates.\n\nIf you are not sure a post is ok, better ask first 🙂"
	keyWelcomeText = "👋 This is <b>«{{ .chat }}»</b>.\n\nA community for those who want not just to «chat with AI», but to make neural networks work on their own tasks:\nbots, automation, content generation, own products and experiments.\n\nWhat you can do in the chat:\n• ask questions about neural coding, code and integrations\n• show your projects and ask for a review\n• share findings: prompts, services, life hacks\n\nWhere to start:\n1) Read /rules\n2) Briefly introduce yourself: who you are, what you do and what you want to build with AI\n3) With your first task, describe the context and the goal, not only «how to write the code»\n\nWelcome. Here neural networks do the work, and you think strategically 🙂"
	keyHelpText    = "🤖 <b>I am the moderator bot of «{{ .chat }}»</b>\n\nWhat I can do:\n• greet new members and remind them of the rules\n• show the rules on /rules\n• explain what happens here on /welcome\n• filter spam and flood from newcomers\n\nAdmin commands (as a reply): /warn, /ban"
)
