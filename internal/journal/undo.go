package journal

import (
	"mmv/internal/logging"
	"mmv/internal/mmverr"
	"mmv/internal/relocator"
)

// UndoResult reports the moves reversed by Undo.
type UndoResult struct {
	Target   RunID
	UndoRun  RunID
	Restored []Event // MOVE events of the undo run, destination back to source
}

// Preview returns the run Undo would reverse and the moves that would put
// its remaining files back, in the order Undo performs them.
func Preview(reader *Reader) (*Run, []Event, error) {
	target, moves, err := reader.LatestUndoable()
	if err != nil {
		return nil, nil, err
	}
	if target == nil {
		return nil, nil, mmverr.New(mmverr.ErrNotFound, "no run to undo in the journal")
	}

	reversed := make([]Event, 0, len(moves))
	for i := len(moves) - 1; i >= 0; i-- {
		m := moves[i]
		reversed = append(reversed, Event{
			Type:            EventMove,
			SourcePath:      m.DestinationPath,
			DestinationPath: m.SourcePath,
		})
	}
	return target, reversed, nil
}

// Undo reverses the pending moves of the most recent undoable run, newest
// first. Files are never overwritten while undoing; the first failure stops
// the undo and is returned together with what was restored so far. Moves
// left behind stay pending for the next Undo.
func Undo(reader *Reader, writer *Writer, mover *relocator.Relocator) (*UndoResult, error) {
	logger := logging.GetLogger("journal")

	target, restores, err := Preview(reader)
	if err != nil {
		return nil, err
	}

	undoRun, err := writer.StartRun(RunTypeUndo, map[string]string{MetaUndoTarget: string(target.ID)})
	if err != nil {
		return nil, err
	}

	result := &UndoResult{Target: target.ID, UndoRun: undoRun}
	abort := func(err error) (*UndoResult, error) {
		if endErr := writer.EndRun(err); endErr != nil {
			logger.Warn().Err(endErr).Msg("Failed to close undo run in journal")
		}
		return result, err
	}
	for _, r := range restores {
		if _, err := mover.Move(r.SourcePath, r.DestinationPath, false); err != nil {
			logger.Error().Err(err).Str("path", r.SourcePath).Msg("Undo stopped")
			return abort(err)
		}
		if err := writer.RecordMove(r.SourcePath, r.DestinationPath); err != nil {
			logger.Error().Err(err).Str("path", r.DestinationPath).Msg("Restored file not recorded")
			return abort(err)
		}
		r.RunID = undoRun
		result.Restored = append(result.Restored, r)
		logger.Debug().Str("source", r.SourcePath).Str("destination", r.DestinationPath).Msg("Restored file")
	}

	if err := writer.EndRun(nil); err != nil {
		return result, err
	}
	return result, nil
}
