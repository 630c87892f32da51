package handlers

import api "github.com/OvyFlash/telegram-bot-api"

// canModerate reports whether a chat member holds the rights the bot needs:
// deleting messages and banning members.
func canModerate(member *api.ChatMember) bool {
	if member == nil {
		return false
	}
	if member.IsCreator() {
		return true
	}
	return member.IsAdministrator() && member.CanDeleteMessages && member.CanRestrictMembers
}
