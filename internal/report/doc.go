// Package report renders the result of a backup for the terminal or for
// scripts.
//
// Text output is colorized with fatih/color, which disables itself when
// stdout is not a terminal or NO_COLOR is set. JSON output is a single
// document:
//
//	{
//	  "source": "/home/me/proj",
//	  "destination": "/home/me/proj_bak",
//	  "kind": "directory",
//	  "files": 12,
//	  "dirs": 4,
//	  "bytes": 20480,
//	  "skipped": [{"path": "link", "reason": "symlink"}]
//	}
package report
