package shell

const usageText = `commands:
  show [-rows N]      display the board, queue, hold and probability
  fill <col> <row>    fill one board cell (column 0-9, row 0-23)
  unfill <col> <row>  empty one board cell
  queue [KINDS|clear] show or set the piece queue, e.g. queue IOJL
  hold [KIND|clear]   show or set the hold slot
  deal [n]            deal pieces from the bag into the queue
  set [option value]  show or change settings (bag, kicks, moves,
                      max_pieces, prob_floor, early_accept, workers,
                      cache_fraction)
  solve               search for the most likely perfect clear
  stop                cancel a running solve, keeping the best line
  stats               cache statistics
  reset               start over with an empty game
  help                this text
  exit                quit`

func usage(cmd *shellcmd) (*Response, error) {
	return msg(usageText), nil
}
