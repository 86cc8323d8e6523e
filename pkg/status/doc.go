/*
Package status aggregates copy job events into per-job progress rows.

	            +-------------+
	            |   Tracker   |
	            | (Notifier)  |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+----+
	|   Rows    |           |  Logs   |
	| (summary) |           | (UI/UX) |
	+-----------+           +---------+

🎯 Purpose:
- Keeps the latest state and progress of every job it has seen
- Formats progress messages for the structured log
- Feeds the summary table printed when a run ends

🔄 Flow:
1. A Worker delivers StateEvent and ProgressEvent on the job goroutine
2. The Tracker updates the job's row under its own lock
3. Each change is logged through the FileFormatter
4. Rows and Totals are read by the host at any time

🤝 Interfaces:
- copyjob.Notifier: event input
- FileFormatter: message rendering
*/
package status
