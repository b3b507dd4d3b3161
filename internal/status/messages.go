package status

import "fmt"

// transitionMessage is the history-post wording for a flip. Auto-closed
// topics cite the configured duration ("closed after 3 days").
func transitionMessage(status string, enabled bool, opts ApplyOptions) string {
	switch status {
	case StatusClosed:
		if !enabled {
			return "This topic is now opened. New replies are allowed."
		}
		if opts.Automated && opts.Duration != nil {
			return fmt.Sprintf("This topic was automatically closed after %s. New replies are no longer allowed.",
				durationWording(*opts.Duration))
		}
		return "This topic is now closed. New replies are no longer allowed."
	case StatusVisible:
		if enabled {
			return "This topic is now listed. It will be displayed in topic lists."
		}
		return "This topic is now unlisted. It will no longer be displayed in topic lists."
	case StatusArchived:
		if enabled {
			return "This topic is now archived. It is frozen and cannot be changed."
		}
		return "This topic is now unarchived. It is no longer frozen."
	case StatusPinned, StatusPinnedGlobally:
		if enabled {
			return "This topic is now pinned. It will appear at the top of its category."
		}
		return "This topic is now unpinned. It will no longer appear at the top of its category."
	}
	return ""
}

// durationWording renders whole days when the hour count divides
// evenly, hours otherwise.
func durationWording(hours int) string {
	if hours >= 24 && hours%24 == 0 {
		days := hours / 24
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
